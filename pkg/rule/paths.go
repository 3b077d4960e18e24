// Package rule resolves and loads the parsing rule definitions that bind
// grammar constructs to extractors and segments to fillers.
//
// Definitions are layered: general rules apply to every feature and
// dialect, and the rules of a (feature, dialect) pair override general
// rules with the same id.
package rule

import (
	"path"

	"github.com/leapstack-labs/shardparse/pkg/dialect"
)

// Resource layout.
const (
	RootDir    = "META-INF/parsing-rule-definition"
	GeneralDir = "general"

	SQLStatementRuleDefinitionFile = "sql-statement-rule-definition.xml"
	ExtractorRuleDefinitionFile    = "extractor-rule-definition.xml"
	FillerRuleDefinitionFile       = "filler-rule-definition.xml"
)

// SQLStatementRuleDefinitionFileName returns the statement rule file of a
// feature and dialect.
func SQLStatementRuleDefinitionFileName(feature string, db dialect.DatabaseType) string {
	return path.Join(RootDir, feature, db.Name(), SQLStatementRuleDefinitionFile)
}

// ExtractorRuleDefinitionFileName returns the extractor rule file of a
// feature and dialect.
func ExtractorRuleDefinitionFileName(feature string, db dialect.DatabaseType) string {
	return path.Join(RootDir, feature, db.Name(), ExtractorRuleDefinitionFile)
}

// GeneralExtractorRuleDefinitionFileName returns the extractor rule file
// shared by all features and dialects.
func GeneralExtractorRuleDefinitionFileName() string {
	return path.Join(RootDir, GeneralDir, ExtractorRuleDefinitionFile)
}

// GeneralFillerRuleDefinitionFileName returns the filler rule file shared by
// all features and dialects.
func GeneralFillerRuleDefinitionFileName() string {
	return path.Join(RootDir, GeneralDir, FillerRuleDefinitionFile)
}
