package program

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/mod/semver"

	"github.com/kolkov/lockmodel/internal/intrinsic"
)

// SupportedMajor is the scenario format major version this parser reads.
const SupportedMajor = "v1"

// MaxLocks bounds the locks directive.
const MaxLocks = 4096

var instructions = []string{"create", "acquire", "release", "yield"}

// ParseFile reads and parses the scenario at path.
func ParseFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(path, f)
}

// Parse parses a scenario from r.
//
// Errors are *ParseError with the position of the offending token.
func Parse(r io.Reader) (*Program, error) {
	return parse("", r)
}

// ParseString parses a scenario held in a string.
func ParseString(src string) (*Program, error) {
	return Parse(strings.NewReader(src))
}

type token struct {
	text string
	col  int // 1-indexed
}

// parser holds the state of one parse.
type parser struct {
	file     string
	prog     *Program
	line     int
	written  map[int]bool // registers written so far in the current thread
	sawLocks bool
}

func parse(file string, r io.Reader) (*Program, error) {
	p := &parser{file: file, prog: &Program{}}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		p.line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		toks := tokenize(text)
		if len(toks) == 0 {
			continue
		}
		if err := p.parseLine(toks); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if p.prog.Format == "" {
		return nil, newParseError(file, max(p.line, 1), 1, "missing format header").
			withSuggestion("start the file with %q", "format v1.0.0")
	}
	if len(p.prog.Threads) == 0 {
		return nil, newParseError(file, max(p.line, 1), 1, "program declares no threads").
			withSuggestion("add a %q block", "thread main")
	}
	return p.prog, nil
}

func (p *parser) parseLine(toks []token) error {
	if p.prog.Format == "" {
		return p.parseHeader(toks)
	}

	head := toks[0]
	switch head.text {
	case "format":
		return p.errorf(head, "duplicate format header")
	case "locks":
		return p.parseLocks(toks)
	case "thread":
		return p.parseThread(toks)
	}

	if len(p.prog.Threads) == 0 {
		return p.errorf(head, "instruction %q outside of a thread", head.text).
			withSuggestion("declare a thread first, e.g. %q", "thread main")
	}
	in, err := p.parseInstr(toks)
	if err != nil {
		return err
	}
	th := &p.prog.Threads[len(p.prog.Threads)-1]
	th.Code = append(th.Code, in)
	return nil
}

func (p *parser) parseHeader(toks []token) error {
	if toks[0].text != "format" {
		return p.errorf(toks[0], "expected format header, got %q", toks[0].text).
			withSuggestion("start the file with %q", "format v1.0.0")
	}
	if len(toks) != 2 {
		return p.errorf(toks[0], "format header takes exactly one version")
	}
	v := toks[1]
	if !semver.IsValid(v.text) {
		return p.errorf(v, "invalid format version %q", v.text).
			withSuggestion("versions look like %q", "v1.0.0")
	}
	if major := semver.Major(v.text); major != SupportedMajor {
		return p.errorf(v, "unsupported format version %s (major %s)", v.text, major).
			withSuggestion("this parser reads %s.x scenarios", SupportedMajor)
	}
	p.prog.Format = semver.Canonical(v.text)
	return nil
}

func (p *parser) parseLocks(toks []token) error {
	if len(p.prog.Threads) > 0 {
		return p.errorf(toks[0], "locks must be declared before the first thread")
	}
	if p.sawLocks {
		return p.errorf(toks[0], "duplicate locks declaration")
	}
	if len(toks) != 2 {
		return p.errorf(toks[0], "locks takes exactly one count")
	}
	n, err := strconv.Atoi(toks[1].text)
	if err != nil || n < 0 {
		return p.errorf(toks[1], "invalid lock count %q", toks[1].text)
	}
	if n > MaxLocks {
		return p.errorf(toks[1], "lock count %d exceeds the limit of %d", n, MaxLocks).
			withSuggestion("create further locks inside threads with %q", "create rN")
	}
	p.prog.Locks = n
	p.sawLocks = true
	return nil
}

func (p *parser) parseThread(toks []token) error {
	if len(toks) != 2 {
		return p.errorf(toks[0], "thread declaration takes exactly one name")
	}
	name := toks[1]
	if !isIdent(name.text) {
		return p.errorf(name, "invalid thread name %q", name.text)
	}
	for _, th := range p.prog.Threads {
		if th.Name == name.text {
			return p.errorf(name, "duplicate thread %q", name.text)
		}
	}
	p.prog.Threads = append(p.prog.Threads, Thread{Name: name.text})
	p.written = make(map[int]bool)
	return nil
}

func (p *parser) parseInstr(toks []token) (Instr, error) {
	head := toks[0]

	// Split off an optional ": type" suffix.
	var retTok *token
	for i, t := range toks {
		if t.text == ":" {
			if i+2 != len(toks) {
				return Instr{}, p.errorf(t, "expected a single type after ':'")
			}
			retTok = &toks[i+1]
			toks = toks[:i]
			break
		}
	}

	in := Instr{Kind: Call, Dst: -1, Line: p.line}
	switch head.text {
	case "yield":
		if len(toks) != 1 || retTok != nil {
			return Instr{}, p.errorf(head, "yield takes no operands")
		}
		return Instr{Kind: Yield, Dst: -1, Line: p.line}, nil

	case "create":
		in.Op = intrinsic.LockCreate
		switch len(toks) {
		case 1:
		case 2:
			reg, ok := parseReg(toks[1].text)
			if !ok {
				return Instr{}, p.errorf(toks[1], "create writes a register, got %q", toks[1].text).
					withSuggestion("use a register such as r0")
			}
			in.Dst = reg
		default:
			return Instr{}, p.errorf(toks[2], "create takes at most one register")
		}

	case "acquire", "release":
		op, _ := intrinsic.ParseOp(head.text)
		in.Op = op
		if len(toks) != 2 {
			return Instr{}, p.errorf(head, "%s takes exactly one operand", head.text)
		}
		arg, err := p.parseOperand(toks[1])
		if err != nil {
			return Instr{}, err
		}
		in.Arg = arg

	default:
		err := p.errorf(head, "unknown instruction %q", head.text)
		if s := closest(head.text, instructions); s != "" {
			err.withSuggestion("did you mean %q?", s)
		}
		return Instr{}, err
	}

	in.Ret = defaultRet(in.Op)
	if retTok != nil {
		ty, err := intrinsic.ParseType(retTok.text)
		if err != nil {
			return Instr{}, p.errorf(*retTok, "%v", err).
				withSuggestion("known types: i8..i64, u8..u64, isize, usize, unit, bool, ptr")
		}
		in.Ret = ty
	}
	if in.Dst >= 0 {
		p.written[in.Dst] = true
	}
	return in, nil
}

func (p *parser) parseOperand(t token) (Operand, error) {
	switch t.text {
	case "true", "false":
		return Operand{Literal: intrinsic.Bool(t.text == "true")}, nil
	case "unit", "()":
		return Operand{Literal: intrinsic.Unit()}, nil
	}
	if reg, ok := parseReg(t.text); ok {
		if !p.written[reg] {
			return Operand{}, p.errorf(t, "register r%d read before it was written", reg).
				withSuggestion("assign it with %q earlier in this thread", "create r"+strconv.Itoa(reg))
		}
		return Operand{IsReg: true, Reg: reg}, nil
	}
	n, err := strconv.ParseInt(t.text, 0, 64)
	if err != nil {
		return Operand{}, p.errorf(t, "invalid operand %q", t.text).
			withSuggestion("operands are registers (r0), integers, true, false or unit")
	}
	return Operand{Literal: intrinsic.Int(n)}, nil
}

func (p *parser) errorf(t token, format string, args ...any) *ParseError {
	return newParseError(p.file, p.line, t.col, format, args...)
}

// tokenize splits a line on whitespace, treating ':' as a token of its own.
func tokenize(line string) []token {
	var toks []token
	start := -1
	flush := func(end int) {
		if start >= 0 {
			toks = append(toks, token{text: line[start:end], col: start + 1})
			start = -1
		}
	}
	for i, r := range line {
		switch {
		case unicode.IsSpace(r):
			flush(i)
		case r == ':':
			flush(i)
			toks = append(toks, token{text: ":", col: i + 1})
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(line))
	return toks
}

func parseReg(s string) (int, bool) {
	if len(s) < 2 || s[0] != 'r' {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func isIdent(s string) bool {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && (unicode.IsDigit(r) || r == '-')) {
			continue
		}
		return false
	}
	return s != ""
}

// closest returns the candidate within edit distance 2 of s, or "".
func closest(s string, candidates []string) string {
	best, bestDist := "", 3
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(s, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
