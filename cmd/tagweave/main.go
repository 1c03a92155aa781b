// Command tagweave lists, tokenizes and rewrites tags embedded in text.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/grahms/tagweave"
	"github.com/grahms/tagweave/internal/config"
)

// cli carries state shared by subcommands.
type cli struct {
	configPath string
	format     string
	duplicates string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
	engine *tagweave.Engine
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "tagweave",
		Short: "Extract and rewrite <tags> embedded in text",
		Long: `tagweave scans text for tag regions such as <note kind="a">...</note>
and self-closing markers like <img src="x.png"/>. Malformed tag-like text is
left untouched.

Input is read from the file argument, or stdin when absent.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "path to a YAML config file")
	pf.StringVarP(&c.format, "output", "o", "", "output format: text, json or yaml")
	pf.StringVar(&c.duplicates, "duplicates", "", "duplicate attribute policy: reject or last-wins")
	pf.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(c.tagsCmd(), c.tokensCmd(), c.replaceCmd())
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.format != "" {
		cfg.Format = c.format
	}
	if c.duplicates != "" {
		cfg.Duplicates = c.duplicates
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.Format = strings.ToLower(cfg.Format)

	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	engine, err := cfg.Engine(logger)
	if err != nil {
		return err
	}
	c.cfg, c.logger, c.engine = cfg, logger, engine
	logger.Debug("configuration loaded",
		zap.String("format", cfg.Format),
		zap.String("duplicates", cfg.Duplicates),
		zap.String("command", cmd.Name()),
	)
	return nil
}

func (c *cli) tagsCmd() *cobra.Command {
	var name string
	var first bool
	cmd := &cobra.Command{
		Use:   "tags [file]",
		Short: "List tags in document order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var tags []tagweave.Tag
			switch {
			case name == "":
				if first {
					return fmt.Errorf("--first requires --name")
				}
				tags = c.engine.Parse(content)
			case first:
				tag, ok, err := c.engine.First(content, name)
				if err != nil {
					return err
				}
				if ok {
					tags = append(tags, tag)
				}
			default:
				if tags, err = c.engine.All(content, name); err != nil {
					return err
				}
			}
			c.logger.Debug("tags listed", zap.Int("count", len(tags)), zap.String("name", name))
			return c.writeTags(cmd.OutOrStdout(), tags)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "only list tags with this name")
	cmd.Flags().BoolVar(&first, "first", false, "stop at the first match (requires --name)")
	return cmd
}

func (c *cli) tokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print scanner tokens",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var views []tokenView
			for tok := range c.engine.Scanner(content.Texts(), 0).Tokens() {
				views = append(views, newTokenView(tok))
			}
			if c.cfg.Format != "text" {
				return c.encode(cmd.OutOrStdout(), views)
			}
			w := cmd.OutOrStdout()
			for _, v := range views {
				fmt.Fprintf(w, "%d-%d\t%s\t%q\n", v.Start, v.End, v.Kind, v.Raw)
			}
			return nil
		},
	}
}

func (c *cli) replaceCmd() *cobra.Command {
	var (
		name       string
		text       string
		exhaustive bool
		strip      bool
		remove     bool
	)
	cmd := &cobra.Command{
		Use:   "replace [file]",
		Short: "Rewrite tags and print the resulting text",
		Long: `Replaces the body of the first tag named --name with --text.

  --exhaustive  replace every match
  --strip       drop the tag markers, keeping only the new body
  --remove      delete the matched tags entirely`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var opts []tagweave.ReplaceOption
			if exhaustive {
				opts = append(opts, tagweave.Exhaustive())
			}

			var out tagweave.Content
			switch {
			case remove:
				out, err = c.engine.Remove(content, name, opts...)
			case strip && !cmd.Flags().Changed("text"):
				out, err = c.engine.Strip(content, name, opts...)
			default:
				if strip {
					opts = append(opts, tagweave.StripTags())
				}
				out, err = c.engine.Replace(content, name, tagweave.WithText(text), opts...)
			}
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out.String())
			return err
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "tag name to replace")
	cmd.Flags().StringVar(&text, "text", "", "replacement body")
	cmd.Flags().BoolVar(&exhaustive, "exhaustive", false, "replace every match")
	cmd.Flags().BoolVar(&strip, "strip", false, "remove the tag markers")
	cmd.Flags().BoolVar(&remove, "remove", false, "delete matched tags with their bodies")
	_ = cmd.MarkFlagRequired("name")
	cmd.MarkFlagsMutuallyExclusive("remove", "strip")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (tagweave.Content, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return tagweave.Content{tagweave.Text(data)}, nil
}

type attrView struct {
	Key    string   `json:"key" yaml:"key"`
	Value  string   `json:"value,omitempty" yaml:"value,omitempty"`
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`
}

type tagView struct {
	Name        string     `json:"name" yaml:"name"`
	Attributes  []attrView `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	SelfClosing bool       `json:"self_closing,omitempty" yaml:"self_closing,omitempty"`
	Body        string     `json:"body,omitempty" yaml:"body,omitempty"`
}

type tokenView struct {
	Kind  string `json:"kind" yaml:"kind"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	Raw   string `json:"raw" yaml:"raw"`
}

func newTagView(t tagweave.Tag) tagView {
	v := tagView{Name: t.Name, SelfClosing: t.SelfClosing, Body: t.Body.String()}
	for _, a := range t.Attributes {
		av := attrView{Key: a.Key}
		if a.List {
			av.Values = a.Values
		} else {
			av.Value = a.Value()
		}
		v.Attributes = append(v.Attributes, av)
	}
	return v
}

func newTokenView(tok tagweave.Token) tokenView {
	return tokenView{Kind: tok.Kind.String(), Name: tok.Name, Start: tok.Start, End: tok.End, Raw: tok.Raw}
}

func (c *cli) writeTags(w io.Writer, tags []tagweave.Tag) error {
	if c.cfg.Format != "text" {
		views := make([]tagView, len(tags))
		for i, t := range tags {
			views[i] = newTagView(t)
		}
		return c.encode(w, views)
	}
	for _, t := range tags {
		body := strings.ReplaceAll(t.Body.String(), "\n", `\n`)
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, t.OpenMarker(), body)
	}
	return nil
}

func (c *cli) encode(w io.Writer, v any) error {
	switch c.cfg.Format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}
