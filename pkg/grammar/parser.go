// Package grammar is a small SELECT-statement front end. It builds the
// parse trees the extractors navigate, in the layout they expect:
//
//	selectStatement
//	  selectClause fromClause whereClause groupByClause havingClause
//	  orderByClause limitClause offsetClause
//
// Clauses other than LIMIT and OFFSET are kept flat: the keyword terminals
// followed by the clause's tokens, with every "?" wrapped in a
// parameterMarker node and parenthesized content grouped under a
// parenthesizedExpr node. A subquery is therefore never a statement of its
// own, and its LIMIT never shadows the outer one.
//
// The MySQL limit clause is canonicalized so the offset, when present, is
// always child 1 and the row count child 3:
//
//	LIMIT n            -> LIMIT limitRowCount
//	LIMIT o, n         -> LIMIT limitOffset , limitRowCount
//	LIMIT n OFFSET o   -> LIMIT limitOffset OFFSET limitRowCount
//
// PostgreSQL has independent clauses, in either order:
//
//	LIMIT n | LIMIT ALL    -> limitClause:  LIMIT limitRowCount
//	OFFSET o [ROW|ROWS]    -> offsetClause: OFFSET limitOffset [ROWS]
package grammar

import (
	"fmt"

	"github.com/leapstack-labs/shardparse/pkg/dialect"
	"github.com/leapstack-labs/shardparse/pkg/token"
	"github.com/leapstack-labs/shardparse/pkg/tree"
)

// clause ranks enforce the order of clauses in a statement.
const (
	rankSelect = iota
	rankFrom
	rankWhere
	rankGroupBy
	rankHaving
	rankOrderBy
	rankLimit
)

type parser struct {
	lex *Lexer
	db  dialect.DatabaseType

	cur  token.Token
	peek token.Token
}

// Parse parses a single SELECT statement. An optional trailing semicolon is
// allowed.
func Parse(sql string, db dialect.DatabaseType) (*tree.RuleNode, error) {
	if !db.IsValid() {
		return nil, fmt.Errorf("grammar: unsupported database type %s", db)
	}
	p := &parser{lex: NewLexer(sql, db), db: db}
	p.next()
	p.next()
	return p.parseStatement()
}

func (p *parser) next() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

// terminal turns the current token into a terminal node and advances.
func (p *parser) terminal() tree.Node {
	n := tree.NewTerminalNode(tree.RuleName(p.cur.Type.String()), p.cur.Literal, p.cur.Pos.Offset)
	p.next()
	return n
}

// unexpected reports the current token, with context appended when given.
func (p *parser) unexpected(context string) error {
	var msg string
	switch p.cur.Type {
	case token.EOF:
		msg = "unexpected end of statement"
	case token.ILLEGAL:
		msg = fmt.Sprintf("invalid token %q", p.cur.Literal)
	default:
		msg = fmt.Sprintf("unexpected %q", p.cur.Literal)
	}
	if context != "" {
		msg += " " + context
	}
	return &SyntaxError{Pos: p.cur.Pos, Msg: msg}
}

func (p *parser) parseStatement() (*tree.RuleNode, error) {
	if p.cur.Type == token.EOF {
		return nil, newSyntaxError(p.cur.Pos, "empty statement")
	}
	if p.cur.Type != token.SELECT {
		return nil, p.unexpected("at start of statement, only SELECT is supported")
	}

	selectClause, err := p.parseFlatClause(tree.RuleSelectClause, 1)
	if err != nil {
		return nil, err
	}
	clauses := []tree.Node{selectClause}

	last := rankSelect
	var seenLimit, seenOffset bool
	for {
		var (
			clause tree.Node
			rank   int
		)
		start := p.cur.Pos
		switch p.cur.Type {
		case token.EOF:
			return tree.NewRuleNode(tree.RuleSelectStatement, clauses...), nil
		case token.SEMICOLON:
			p.next()
			if p.cur.Type != token.EOF {
				return nil, p.unexpected("after end of statement")
			}
			continue
		case token.FROM:
			rank = rankFrom
			clause, err = p.parseFlatClause(tree.RuleFromClause, 1)
		case token.WHERE:
			rank = rankWhere
			clause, err = p.parseFlatClause(tree.RuleWhereClause, 1)
		case token.GROUP:
			rank = rankGroupBy
			clause, err = p.parseByClause(tree.RuleGroupByClause)
		case token.HAVING:
			rank = rankHaving
			clause, err = p.parseFlatClause(tree.RuleHavingClause, 1)
		case token.ORDER:
			rank = rankOrderBy
			clause, err = p.parseByClause(tree.RuleOrderByClause)
		case token.LIMIT:
			if seenLimit {
				return nil, p.unexpected("after LIMIT clause")
			}
			seenLimit, rank = true, rankLimit
			if p.db == dialect.PostgreSQL {
				clause, err = p.parsePostgreSQLLimit()
			} else {
				clause, err = p.parseMySQLLimit()
			}
		case token.OFFSET:
			if p.db != dialect.PostgreSQL {
				return nil, p.unexpected("without LIMIT")
			}
			if seenOffset {
				return nil, p.unexpected("after OFFSET clause")
			}
			seenOffset, rank = true, rankLimit
			clause, err = p.parsePostgreSQLOffset()
		case token.UNION, token.INTERSECT, token.EXCEPT:
			return nil, newSyntaxError(p.cur.Pos, "compound statements are not supported")
		default:
			return nil, p.unexpected("after clause")
		}
		if err != nil {
			return nil, err
		}
		if rank < last || (rank == last && rank != rankLimit) {
			return nil, newSyntaxError(start, "%s clause out of order", clause.ChildAt(0).Text())
		}
		last = rank
		clauses = append(clauses, clause)
	}
}

// parseByClause parses GROUP BY and ORDER BY.
func (p *parser) parseByClause(rule tree.RuleName) (tree.Node, error) {
	if p.peek.Type != token.BY {
		keyword := p.cur.Literal
		p.next()
		return nil, p.unexpected(fmt.Sprintf("after %s, expected BY", keyword))
	}
	return p.parseFlatClause(rule, 2)
}

// parseFlatClause consumes keywords leading keyword tokens and then every
// token up to the next clause boundary.
func (p *parser) parseFlatClause(rule tree.RuleName, keywords int) (tree.Node, error) {
	var children []tree.Node
	var keyword string
	for range keywords {
		if keyword != "" {
			keyword += " "
		}
		keyword += p.cur.Literal
		children = append(children, p.terminal())
	}

	body := 0
	for !isClauseBoundary(p.cur.Type) {
		n, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		children = append(children, n)
		body++
	}
	if body == 0 {
		return nil, p.unexpected("after " + keyword)
	}
	return tree.NewRuleNode(rule, children...), nil
}

func isClauseBoundary(t token.TokenType) bool {
	switch t {
	case token.EOF, token.SEMICOLON, token.RPAREN,
		token.FROM, token.WHERE, token.GROUP, token.HAVING, token.ORDER,
		token.LIMIT, token.OFFSET,
		token.UNION, token.INTERSECT, token.EXCEPT:
		return true
	}
	return false
}

// parseElement parses one token of a flat clause, or a parenthesized group.
func (p *parser) parseElement() (tree.Node, error) {
	switch p.cur.Type {
	case token.ILLEGAL:
		return nil, p.unexpected("")
	case token.QUESTION:
		return tree.NewRuleNode(tree.RuleParameterMarker, p.terminal()), nil
	case token.LPAREN:
		return p.parseParenthesized()
	}
	return p.terminal(), nil
}

// parseParenthesized keeps everything between matching parentheses flat,
// including subquery keywords.
func (p *parser) parseParenthesized() (tree.Node, error) {
	open := p.cur.Pos
	children := []tree.Node{p.terminal()}
	for p.cur.Type != token.RPAREN {
		switch p.cur.Type {
		case token.EOF, token.SEMICOLON:
			return nil, newSyntaxError(open, "unclosed parenthesis")
		case token.ILLEGAL, token.QUESTION, token.LPAREN:
			n, err := p.parseElement()
			if err != nil {
				return nil, err
			}
			children = append(children, n)
		default:
			children = append(children, p.terminal())
		}
	}
	children = append(children, p.terminal())
	return tree.NewRuleNode(tree.RuleParenthesizedExpr, children...), nil
}

// parseLimitValue parses a number or a parameter marker.
func (p *parser) parseLimitValue(after string) (tree.Node, error) {
	switch p.cur.Type {
	case token.NUMBER:
		return tree.NewRuleNode(tree.RuleNumberLiterals, p.terminal()), nil
	case token.QUESTION:
		return tree.NewRuleNode(tree.RuleParameterMarker, p.terminal()), nil
	}
	return nil, p.unexpected("after " + after + ", expected a number or ?")
}

func (p *parser) parseMySQLLimit() (tree.Node, error) {
	limit := p.terminal()
	first, err := p.parseLimitValue(limit.Text())
	if err != nil {
		return nil, err
	}

	switch p.cur.Type {
	case token.COMMA:
		comma := p.terminal()
		rowCount, err := p.parseLimitValue(comma.Text())
		if err != nil {
			return nil, err
		}
		return tree.NewRuleNode(tree.RuleLimitClause,
			limit,
			tree.NewRuleNode(tree.RuleLimitOffset, first),
			comma,
			tree.NewRuleNode(tree.RuleLimitRowCount, rowCount),
		), nil
	case token.OFFSET:
		offsetKeyword := p.terminal()
		offset, err := p.parseLimitValue(offsetKeyword.Text())
		if err != nil {
			return nil, err
		}
		return tree.NewRuleNode(tree.RuleLimitClause,
			limit,
			tree.NewRuleNode(tree.RuleLimitOffset, offset),
			offsetKeyword,
			tree.NewRuleNode(tree.RuleLimitRowCount, first),
		), nil
	}
	return tree.NewRuleNode(tree.RuleLimitClause, limit, tree.NewRuleNode(tree.RuleLimitRowCount, first)), nil
}

func (p *parser) parsePostgreSQLLimit() (tree.Node, error) {
	limit := p.terminal()
	if p.cur.Type == token.ALL {
		return tree.NewRuleNode(tree.RuleLimitClause, limit, tree.NewRuleNode(tree.RuleLimitRowCount, p.terminal())), nil
	}
	rowCount, err := p.parseLimitValue(limit.Text())
	if err != nil {
		return nil, err
	}
	return tree.NewRuleNode(tree.RuleLimitClause, limit, tree.NewRuleNode(tree.RuleLimitRowCount, rowCount)), nil
}

func (p *parser) parsePostgreSQLOffset() (tree.Node, error) {
	offsetKeyword := p.terminal()
	offset, err := p.parseLimitValue(offsetKeyword.Text())
	if err != nil {
		return nil, err
	}
	children := []tree.Node{offsetKeyword, tree.NewRuleNode(tree.RuleLimitOffset, offset)}
	if p.cur.Type == token.ROW || p.cur.Type == token.ROWS {
		children = append(children, p.terminal())
	}
	return tree.NewRuleNode(tree.RuleOffsetClause, children...), nil
}
