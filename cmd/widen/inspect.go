package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wippyai/class-widener/classfile"
	"github.com/wippyai/class-widener/errors"
	"github.com/wippyai/class-widener/widener"
)

func (a *app) inspectCmd() *cobra.Command {
	var rules []string
	cmd := &cobra.Command{
		Use:   "inspect CLASSFILE",
		Short: "Show the access flags of a class and its members",
		Long: `inspect prints the access flags of a class, its fields, its methods and its
InnerClasses entries. With --rules, each line shows the flags before and
after widening.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(cmd.OutOrStdout(), args[0], rules)
		},
	}
	cmd.Flags().StringArrayVar(&rules, "rules", nil, "Rules file (repeatable)")
	return cmd
}

func (a *app) runInspect(w io.Writer, path string, rulePaths []string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WithPath(errors.PhaseParse, errors.KindIO, err, path)
	}
	before, err := classfile.Parse(data)
	if err != nil {
		return errors.WithPath(errors.PhaseParse, errors.KindMalformedClass, err, path)
	}

	var after *classfile.ClassFile
	if len(rulePaths) > 0 {
		rs, err := widener.LoadRules(rulePaths...)
		if err != nil {
			return err
		}
		// Parse a second copy so before keeps the original flags.
		after, err = classfile.Parse(data)
		if err != nil {
			return err
		}
		if _, err := widener.NewTransformer(rs).Apply(after); err != nil {
			return errors.WithPath(errors.PhaseTransform, errors.KindMalformedClass, err, path)
		}
	}

	return writeInspection(w, before, after)
}

func writeInspection(w io.Writer, before, after *classfile.ClassFile) error {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render("class"), nameStyle.Render(before.ClassName()))
	fmt.Fprintf(w, "  version %d.%d, extends %s\n\n",
		before.MajorVersion, before.MinorVersion, before.SuperName())

	var afterFlags classfile.AccessFlags
	if after != nil {
		afterFlags = after.AccessFlags
	}
	writeFlags(w, "flags", "", before.AccessFlags, afterFlags, after != nil, classfile.ContextClass)

	for i := range before.Fields {
		m := &before.Fields[i]
		if after != nil {
			afterFlags = after.Fields[i].AccessFlags
		}
		writeFlags(w, "field "+before.MemberName(m), before.MemberDescriptor(m),
			m.AccessFlags, afterFlags, after != nil, classfile.ContextField)
	}
	for i := range before.Methods {
		m := &before.Methods[i]
		if after != nil {
			afterFlags = after.Methods[i].AccessFlags
		}
		writeFlags(w, "method "+before.MemberName(m), before.MemberDescriptor(m),
			m.AccessFlags, afterFlags, after != nil, classfile.ContextMethod)
	}

	inners, ok, err := before.InnerClasses()
	if err != nil || !ok {
		return err
	}
	var widened []classfile.InnerClass
	if after != nil {
		if widened, _, err = after.InnerClasses(); err != nil {
			return err
		}
	}
	for i, ic := range inners {
		if after != nil {
			afterFlags = widened[i].InnerAccessFlags
		}
		writeFlags(w, "inner "+before.InnerClassName(ic), "",
			ic.InnerAccessFlags, afterFlags, after != nil, classfile.ContextInnerClass)
	}
	return nil
}

func writeFlags(w io.Writer, label, descriptor string, before, after classfile.AccessFlags, compare bool, ctx classfile.FlagContext) {
	line := "  " + nameStyle.Render(label)
	if descriptor != "" {
		line += " " + typeStyle.Render(descriptor)
	}
	line += ": " + flagString(before, ctx)
	if compare && after != before {
		line += " -> " + changedStyle.Render(flagString(after, ctx))
	}
	fmt.Fprintln(w, line)
}

func flagString(f classfile.AccessFlags, ctx classfile.FlagContext) string {
	s := f.Format(ctx)
	if s == "" {
		return fmt.Sprintf("(package) 0x%04x", uint16(f))
	}
	return fmt.Sprintf("%s 0x%04x", s, uint16(f))
}
