package dsl

import (
	"strconv"
	"strings"
)

// parser is a single-pass recursive-descent parser over a token stream. The
// only lookahead needed is bounded: distinguishing a due clause's leading
// "in"/"at" from the same words appearing inside a task title.
type parser struct {
	tokens []Token
	pos    int
}

// ParseCommand parses one utterance into a parse tree. Any token mismatch
// aborts with a ParseError carrying the single reason code "cannot_parse";
// there are no partial results and no recovery.
func ParseCommand(tokens []Token) (*Tree, error) {
	if len(tokens) == 0 {
		return nil, errCannotParse()
	}
	p := &parser{tokens: tokens}
	cmd, err := p.command()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != TokenEOF {
		return nil, errCannotParse()
	}
	return &Tree{Command: cmd}, nil
}

func (p *parser) cur() Token {
	return p.at(0)
}

// at returns the token at the given offset from the cursor, or the final EOF
// token when the offset runs past the stream.
func (p *parser) at(offset int) Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(keyword string) error {
	if !p.cur().Is(keyword) {
		return errCannotParse()
	}
	p.advance()
	return nil
}

func (p *parser) command() (CommandNode, error) {
	t := p.cur()
	switch {
	case t.IsAny("hello", "hi", "hey"):
		return p.greeting()
	case t.Is("who") || t.Is("introduce"):
		return p.introduce()
	case t.IsAny("what", "how", "why", "when"):
		return p.asking()
	case t.Is("help"):
		return p.support()
	case t.Is("remind"):
		return p.createAction()
	case t.IsAny("view", "show", "list"):
		return p.viewAction()
	case t.IsAny("delete", "remove"):
		return p.deleteAction()
	case t.IsAny("update", "modify"):
		return p.modifyAction()
	case t.IsAny("yes", "y", "yeah", "yep", "ok", "okay", "sure", "confirm"):
		p.advance()
		return &ConfirmNode{Accepted: true}, nil
	case t.IsAny("no", "n", "nope", "cancel"):
		p.advance()
		return &ConfirmNode{Accepted: false}, nil
	default:
		return nil, errCannotParse()
	}
}

func (p *parser) greeting() (CommandNode, error) {
	p.advance()
	node := &GreetingNode{}
	if p.cur().Kind == TokenIdent {
		node.Name = p.advance().Text
	}
	return node, nil
}

func (p *parser) introduce() (CommandNode, error) {
	if p.cur().Is("introduce") {
		p.advance()
		if err := p.expect("yourself"); err != nil {
			return nil, err
		}
		return &IntroduceNode{}, nil
	}
	for _, kw := range []string{"who", "are", "you"} {
		if err := p.expect(kw); err != nil {
			return nil, err
		}
	}
	return &IntroduceNode{}, nil
}

// asking accepts the rest of the utterance verbatim as a free-form question.
func (p *parser) asking() (CommandNode, error) {
	var words []string
	for p.cur().Kind != TokenEOF {
		words = append(words, p.advance().Text)
	}
	return &AskNode{Question: strings.Join(words, " ")}, nil
}

func (p *parser) support() (CommandNode, error) {
	p.advance()
	node := &SupportNode{Topic: "general"}
	if p.cur().Kind != TokenEOF {
		node.Topic = strings.ToLower(p.advance().Text)
	}
	if p.cur().Kind != TokenEOF {
		return nil, errCannotParse()
	}
	return node, nil
}

// createAction := "remind" "me" "to" taskTitle dueSpec? rruleClause? statusClause?
func (p *parser) createAction() (CommandNode, error) {
	for _, kw := range []string{"remind", "me", "to"} {
		if err := p.expect(kw); err != nil {
			return nil, err
		}
	}

	title, err := p.taskTitle(false)
	if err != nil {
		return nil, err
	}
	node := &CreateNode{Title: title}

	if node.Due, err = p.dueSpec(); err != nil {
		return nil, err
	}
	if node.Rrule, err = p.rruleClause(); err != nil {
		return nil, err
	}
	if node.Status, err = p.statusClause(); err != nil {
		return nil, err
	}
	return node, nil
}

// viewAction := ("view"|"show"|"list") "tasks" ("on" DATE)?
func (p *parser) viewAction() (CommandNode, error) {
	p.advance()
	if err := p.expect("tasks"); err != nil {
		return nil, err
	}
	node := &ViewNode{}
	if p.cur().Is("on") {
		p.advance()
		if p.cur().Kind != TokenDate {
			return nil, errCannotParse()
		}
		node.Date = p.advance().Text
	}
	return node, nil
}

// deleteAction := ("delete"|"remove") "task" taskTitle dueSpec?
func (p *parser) deleteAction() (CommandNode, error) {
	p.advance()
	if err := p.expect("task"); err != nil {
		return nil, err
	}
	title, err := p.taskTitle(false)
	if err != nil {
		return nil, err
	}
	due, err := p.dueSpec()
	if err != nil {
		return nil, err
	}
	return &DeleteNode{Title: title, Due: due}, nil
}

// modifyAction := ("update"|"modify") "task" taskTitle dueSpec? "set" fieldAssign ("," fieldAssign)*
func (p *parser) modifyAction() (CommandNode, error) {
	p.advance()
	if err := p.expect("task"); err != nil {
		return nil, err
	}
	title, err := p.taskTitle(true)
	if err != nil {
		return nil, err
	}
	due, err := p.dueSpec()
	if err != nil {
		return nil, err
	}
	if err := p.expect("set"); err != nil {
		return nil, err
	}

	node := &ModifyNode{Title: title, Due: due}
	for {
		assign, err := p.fieldAssign()
		if err != nil {
			return nil, err
		}
		node.Assigns = append(node.Assigns, assign)
		if !p.cur().Is(",") {
			break
		}
		p.advance()
	}
	return node, nil
}

// taskTitle collects free text up to the next clause boundary. A clause is
// recognized only by its leading keyword plus one token of lookahead, so words
// like "in" or "at" inside a title do not end it.
func (p *parser) taskTitle(stopAtSet bool) ([]string, error) {
	var words []string
	for !p.titleBoundary(stopAtSet) {
		words = append(words, p.advance().Text)
	}
	if len(words) == 0 {
		return nil, errCannotParse()
	}
	return words, nil
}

func (p *parser) titleBoundary(stopAtSet bool) bool {
	t := p.cur()
	switch {
	case t.Kind == TokenEOF:
		return true
	case t.Is("in") && p.at(1).Kind == TokenInt && isTimeUnit(p.at(2)):
		return true
	case t.Is("at") && p.at(1).Kind == TokenDate:
		return true
	case t.Is("repeat") && p.at(1).Is("every"):
		return true
	case t.Is("as") && p.at(1).Kind == TokenStatus:
		return true
	case stopAtSet && t.Is("set") && p.at(2).Is("="):
		return true
	}
	return false
}

// dueSpec := "in" INT timeUnit | "at" DATE TIME
// Absent leading keyword means the clause is not present, never inferred.
func (p *parser) dueSpec() (*DueSpecNode, error) {
	switch {
	case p.cur().Is("in") && p.at(1).Kind == TokenInt:
		p.advance()
		amount, err := strconv.Atoi(p.advance().Text)
		if err != nil {
			return nil, errCannotParse()
		}
		if !isTimeUnit(p.cur()) {
			return nil, errCannotParse()
		}
		return &DueSpecNode{Relative: true, Amount: amount, Unit: strings.ToLower(p.advance().Text)}, nil
	case p.cur().Is("at") && p.at(1).Kind == TokenDate:
		p.advance()
		date := p.advance().Text
		if p.cur().Kind != TokenTime {
			return nil, errCannotParse()
		}
		return &DueSpecNode{Date: date, Time: p.advance().Text}, nil
	default:
		return nil, nil
	}
}

// rruleClause := "repeat" "every" INT? timeUnit
func (p *parser) rruleClause() (*RruleNode, error) {
	if !p.cur().Is("repeat") {
		return nil, nil
	}
	p.advance()
	if err := p.expect("every"); err != nil {
		return nil, err
	}
	node := &RruleNode{Interval: 1}
	if p.cur().Kind == TokenInt {
		interval, err := strconv.Atoi(p.advance().Text)
		if err != nil {
			return nil, errCannotParse()
		}
		node.Interval = interval
	}
	if !isTimeUnit(p.cur()) {
		return nil, errCannotParse()
	}
	node.Unit = strings.ToLower(p.advance().Text)
	return node, nil
}

// statusClause := "as" STATUS
func (p *parser) statusClause() (*StatusNode, error) {
	if !p.cur().Is("as") {
		return nil, nil
	}
	p.advance()
	if p.cur().Kind != TokenStatus {
		return nil, errCannotParse()
	}
	return &StatusNode{Value: strings.ToLower(p.advance().Text)}, nil
}

// fieldAssign := key "=" value, where value runs until the next "," or EOF.
func (p *parser) fieldAssign() (FieldAssignNode, error) {
	key := p.cur()
	if key.Kind == TokenEOF || key.Is(",") || key.Is("=") {
		return FieldAssignNode{}, errCannotParse()
	}
	p.advance()
	if err := p.expect("="); err != nil {
		return FieldAssignNode{}, err
	}
	var words []string
	for p.cur().Kind != TokenEOF && !p.cur().Is(",") && !p.cur().Is("=") {
		words = append(words, p.advance().Text)
	}
	if len(words) == 0 {
		return FieldAssignNode{}, errCannotParse()
	}
	return FieldAssignNode{Key: strings.ToLower(key.Text), Value: strings.Join(words, " ")}, nil
}

func isTimeUnit(t Token) bool {
	return t.IsAny("minute", "minutes", "hour", "hours", "day", "days")
}
