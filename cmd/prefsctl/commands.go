package main

import (
	"bytes"
	"fmt"

	"github.com/fatih/color"
	"github.com/goliatone/go-prefs"
	"github.com/goliatone/go-prefs/pkg/format"
	"github.com/goliatone/go-prefs/pkg/store"
	"github.com/spf13/cobra"
)

var (
	nameColor  = color.New(color.FgCyan, color.Bold)
	mutedColor = color.New(color.FgHiBlack)
	okColor    = color.New(color.FgGreen)
)

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print every stored field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			doc, found, err := s.read(cmd.Context())
			if err != nil {
				return err
			}
			if !found {
				mutedColor.Fprintf(a.out, "no document stored in %s\n", store.Describe(s.store))
				return nil
			}
			mutedColor.Fprintf(a.out, "# %s (%s, version %d)\n", store.Describe(s.store), s.codec.Name(), doc.Version())
			for _, name := range doc.Names() {
				frag, _ := doc.Get(name)
				fmt.Fprintf(a.out, "%s = %s\n", nameColor.Sprint(name), inline(frag))
			}
			return nil
		},
	}
}

func newGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <field>",
		Short: "Print one stored field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			doc, _, err := s.read(cmd.Context())
			if err != nil {
				return err
			}
			frag, ok := doc.Get(args[0])
			if !ok {
				return fmt.Errorf("field %q is not stored", args[0])
			}
			fmt.Fprintln(a.out, inline(frag))
			return nil
		},
	}
}

func newSetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <field> <value>",
		Short: "Store a field value",
		Long: `Store a field value. The value is parsed in the document format; text
that does not parse is stored as a string.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if name == "" || name == format.VersionKey {
				return fmt.Errorf("%w: %q", prefs.ErrInvalidFieldName, name)
			}
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			doc, _, err := s.read(cmd.Context())
			if err != nil {
				return err
			}
			frag, err := parseValue(s.codec, args[1])
			if err != nil {
				return err
			}
			doc.Set(name, frag)
			if err := s.write(cmd.Context(), doc); err != nil {
				return err
			}
			okColor.Fprintf(a.out, "set %s\n", name)
			return nil
		},
	}
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <field>",
		Aliases: []string{"rm"},
		Short:   "Remove a stored field so the application falls back to its default",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			doc, found, err := s.read(cmd.Context())
			if err != nil {
				return err
			}
			if _, ok := doc.Get(args[0]); !found || !ok {
				return fmt.Errorf("field %q is not stored", args[0])
			}
			next := prefs.NewDocument(doc.Version())
			for _, name := range doc.Names() {
				if name == args[0] {
					continue
				}
				frag, _ := doc.Get(name)
				next.Set(name, frag)
			}
			if err := s.write(cmd.Context(), next); err != nil {
				return err
			}
			okColor.Fprintf(a.out, "deleted %s\n", args[0])
			return nil
		},
	}
}

// parseValue encodes raw as a fragment, falling back to a string value.
func parseValue(codec format.Format, raw string) (prefs.Fragment, error) {
	var value any
	if err := codec.Unmarshal([]byte(raw), &value); err != nil || value == nil && raw != "null" {
		value = raw
	}
	data, err := codec.Marshal(value)
	if err != nil {
		return nil, err
	}
	return prefs.Fragment(data), nil
}

func inline(frag prefs.Fragment) string {
	return string(bytes.TrimSpace(frag))
}
