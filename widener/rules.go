package widener

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wippyai/class-widener/errors"
)

// Rule file format:
//
//	accessWidener v2 named
//	# comment
//	accessible class com/x/Foo
//	accessible method com/x/Foo run (I)V
//	extendable method com/x/Foo hook ()V
//	mutable field com/x/Foo count I
//	protected field com/x/Foo cache Ljava/util/Map;   # v2 only
//
// accessible and extendable on a member also open up the owning class.
// Version 2 files may prefix any keyword with "transitive-"; the prefix is
// accepted and otherwise ignored.

const headerKeyword = "accessWidener"

// ParseRules parses a single rule source. name is used in error messages.
func ParseRules(r io.Reader, name string) (*Ruleset, error) {
	b := NewRulesetBuilder()
	if err := b.Parse(r, name); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// LoadRules parses and merges rule files. Files must agree on their
// namespace.
func LoadRules(paths ...string) (*Ruleset, error) {
	b := NewRulesetBuilder()
	for _, p := range paths {
		if err := b.ParseFile(p); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// ParseFile parses the rule file at path into the builder.
func (b *RulesetBuilder) ParseFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(errors.PhaseRules, errors.KindIO, err, "open "+path)
	}
	defer f.Close()
	return b.Parse(f, path)
}

// Parse reads one rule source into the builder. On error the builder may
// hold a prefix of the source's rules.
func (b *RulesetBuilder) Parse(r io.Reader, name string) error {
	sc := bufio.NewScanner(r)
	version := 0
	line := 0

	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		if version == 0 {
			v, ns, err := parseHeader(fields)
			if err != nil {
				return errors.InvalidRule(name, line, err.Error())
			}
			if err := b.SetNamespace(ns); err != nil {
				return errors.WithPath(errors.PhaseRules, errors.KindRuleConflict, err, name+":"+strconv.Itoa(line))
			}
			version = v
			continue
		}

		if err := b.parseLine(fields, version); err != nil {
			return errors.InvalidRule(name, line, err.Error())
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(errors.PhaseRules, errors.KindIO, err, "read "+name)
	}
	if version == 0 {
		return errors.InvalidRule(name, line, "missing accessWidener header")
	}
	return nil
}

type ruleError string

func (e ruleError) Error() string { return string(e) }

func parseHeader(fields []string) (int, string, error) {
	if len(fields) != 3 || fields[0] != headerKeyword {
		return 0, "", ruleError("expected header \"accessWidener <v1|v2> <namespace>\"")
	}
	switch fields[1] {
	case "v1":
		return 1, fields[2], nil
	case "v2":
		return 2, fields[2], nil
	default:
		return 0, "", ruleError("unsupported version " + fields[1])
	}
}

func (b *RulesetBuilder) parseLine(fields []string, version int) error {
	keyword := fields[0]
	if version >= 2 {
		keyword = strings.TrimPrefix(keyword, "transitive-")
	}

	if len(fields) < 3 {
		return ruleError("expected \"<access> <class|method|field> <owner> ...\"")
	}

	var kind TargetKind
	switch fields[1] {
	case "class":
		kind = KindClass
		if len(fields) != 3 {
			return ruleError("class rule takes exactly one class name")
		}
	case "method", "field":
		kind = KindField
		if fields[1] == "method" {
			kind = KindMethod
		}
		if len(fields) != 5 {
			return ruleError(fields[1] + " rule takes owner, name and descriptor")
		}
	default:
		return ruleError("unknown target type " + fields[1])
	}

	owner := fields[2]
	if strings.ContainsRune(owner, '.') {
		return ruleError("class names must use internal form with '/': " + owner)
	}
	target := Target{Kind: kind, Owner: owner}
	if kind != KindClass {
		target.Name = fields[3]
		target.Descriptor = fields[4]
		if err := checkDescriptor(kind, target.Descriptor); err != nil {
			return err
		}
	}

	switch keyword {
	case "accessible":
		b.Add(target, WidenToPublic)
		if kind != KindClass {
			b.Add(ClassTarget(owner), WidenToPublic)
		}
	case "extendable":
		switch kind {
		case KindClass:
			b.Add(target, WidenToPublic, RemoveFinal)
		case KindMethod:
			b.Add(target, WidenToProtected, RemoveFinal)
			b.Add(ClassTarget(owner), WidenToPublic, RemoveFinal)
		default:
			return ruleError("extendable is not valid on fields")
		}
	case "mutable":
		if kind != KindField {
			return ruleError("mutable is only valid on fields")
		}
		b.Add(target, RemoveFinal)
	case "public", "protected", "package", "definal":
		if version < 2 {
			return ruleError(keyword + " requires accessWidener v2")
		}
		b.Add(target, literalTransition(keyword))
	default:
		return ruleError("unknown access " + fields[0])
	}
	return nil
}

func literalTransition(keyword string) Transition {
	switch keyword {
	case "public":
		return WidenToPublic
	case "protected":
		return WidenToProtected
	case "package":
		return WidenToPackagePrivate
	default:
		return RemoveFinal
	}
}

func checkDescriptor(kind TargetKind, desc string) error {
	if kind == KindMethod {
		if !strings.HasPrefix(desc, "(") || !strings.Contains(desc, ")") {
			return ruleError("invalid method descriptor " + desc)
		}
		return nil
	}
	if desc == "" || strings.HasPrefix(desc, "(") {
		return ruleError("invalid field descriptor " + desc)
	}
	return nil
}
