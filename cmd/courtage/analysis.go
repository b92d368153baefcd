package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/assurlink/courtage/internal/breakeven"
	"github.com/assurlink/courtage/internal/compare"
	"github.com/assurlink/courtage/internal/config"
	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/transform"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var solveCmd = &cobra.Command{
	Use:   "solve [input-file]",
	Short: "Find the contribution or duration reaching a target capital",
	Example: `  courtage solve epargne.yaml --capital 1000000
  courtage solve education.yaml --capital 5000000 --target all --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, tables, err := newEngine(cmd)
		if err != nil {
			return err
		}
		base, err := config.NewInputParser(tables).LoadFromFile(args[0])
		if err != nil {
			return err
		}
		capital, _ := cmd.Flags().GetInt64("capital")
		target, _ := cmd.Flags().GetString("target")
		maxYears, _ := cmd.Flags().GetInt("max-years")

		req := breakeven.SolveRequest{
			Base:          base,
			Target:        breakeven.SolveTarget(target),
			TargetCapital: decimal.NewFromInt(capital),
			MaxYears:      maxYears,
		}
		solver := breakeven.NewDefaultSolver(engine)
		format := formatFlag(cmd, "table")

		var result interface{}
		var table string
		if target == "all" {
			mr, err := solver.SolveAll(commandContext(cmd), req)
			if err != nil {
				return err
			}
			result, table = mr, (&breakeven.TableFormatter{}).FormatMulti(mr)
		} else {
			sr, err := solver.Solve(commandContext(cmd), req)
			if err != nil {
				return err
			}
			result, table = sr, (&breakeven.TableFormatter{}).Format(sr)
		}

		switch format {
		case "table", "console":
			return emit(cmd, []byte(table))
		case "json":
			s, err := (&breakeven.JSONFormatter{Pretty: true}).Format(result)
			if err != nil {
				return err
			}
			return emit(cmd, []byte(s+"\n"))
		}
		return fmt.Errorf("solve supports table or json, not %q", format)
	},
}

// parseVariantFlag reads "[name=]spec;spec". The name is recognised when an
// '=' appears before the first ':'.
func parseVariantFlag(registry *transform.TransformRegistry, raw string) (compare.Variant, error) {
	var v compare.Variant
	spec := raw
	head, _, _ := strings.Cut(raw, ":")
	if name, rest, ok := strings.Cut(head, "="); ok {
		v.Name = strings.TrimSpace(name)
		spec = rest + strings.TrimPrefix(raw, head)
	}
	ts, err := registry.ParseVariant(spec)
	if err != nil {
		return v, fmt.Errorf("variant %q: %w", raw, err)
	}
	v.Transforms = ts
	v.Description = transform.Describe(ts)
	return v, nil
}

func listTemplates(cmd *cobra.Command, engine *compare.CompareEngine) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Modèles disponibles :")
	for _, p := range domain.AllProducts() {
		tpls := engine.TemplateRegistry.ForProduct(p)
		if len(tpls) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n  %s\n", p.Label())
		for _, t := range tpls {
			fmt.Fprintf(out, "    %-24s %s\n", t.Name, t.Description)
		}
	}
	fmt.Fprintf(out, "\nTransformations : %s\n", strings.Join(transform.NewTransformRegistry().List(), ", "))
}

var compareCmd = &cobra.Command{
	Use:   "compare [input-file]",
	Short: "Compare a quote with variants and built-in templates",
	Example: `  courtage compare auto.yaml --with "semestre=set_duration:months=6"
  courtage compare epargne.yaml --templates epargne_25000 --with "plus=set_contribution:amount=15000" --format csv
  courtage compare --list-templates`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, tables, err := newEngine(cmd)
		if err != nil {
			return err
		}
		ce := compare.NewCompareEngine(engine)
		ce.Validator = config.NewInputParser(tables)

		if list, _ := cmd.Flags().GetBool("list-templates"); list {
			listTemplates(cmd, ce)
			return nil
		}
		if len(args) != 1 {
			return fmt.Errorf("input file required (use --list-templates to see templates)")
		}
		base, err := config.NewInputParser(tables).LoadFromFile(args[0])
		if err != nil {
			return err
		}

		registry := transform.NewTransformRegistry()
		withs, _ := cmd.Flags().GetStringArray("with")
		var variants []compare.Variant
		for _, w := range withs {
			v, err := parseVariantFlag(registry, w)
			if err != nil {
				return err
			}
			variants = append(variants, v)
		}
		templates, _ := cmd.Flags().GetString("templates")
		for _, name := range strings.Split(templates, ",") {
			if name = strings.TrimSpace(name); name == "" {
				continue
			}
			tpl, ok := ce.TemplateRegistry.Get(name)
			if !ok {
				return fmt.Errorf("template %s not found", name)
			}
			if tpl.Product != base.Product {
				return fmt.Errorf("template %s applies to %s, not %s", name, tpl.Product, base.Product)
			}
			variants = append(variants, compare.Variant{Name: tpl.Name, Description: tpl.Description, Transforms: tpl.Transforms})
		}
		if len(variants) == 0 {
			return fmt.Errorf("--with or --templates is required")
		}

		set, err := ce.Compare(commandContext(cmd), base, variants)
		if err != nil {
			return err
		}
		set.Source = args[0]
		return emitComparison(cmd, set)
	},
}

func emitComparison(cmd *cobra.Command, set *compare.ComparisonSet) error {
	switch format := formatFlag(cmd, "table"); format {
	case "table", "console":
		return emit(cmd, []byte((&compare.TableFormatter{}).Format(set)))
	case "compact":
		return emit(cmd, []byte((&compare.TableFormatter{}).FormatCompact(set)+"\n"))
	case "csv":
		s, err := (&compare.CSVFormatter{}).Format(set)
		if err != nil {
			return err
		}
		return emit(cmd, []byte(s))
	case "json":
		s, err := (&compare.JSONFormatter{Pretty: true}).Format(set)
		if err != nil {
			return err
		}
		return emit(cmd, []byte(s+"\n"))
	default:
		return fmt.Errorf("compare supports table, compact, csv or json, not %q", format)
	}
}

// commandContext returns the command's context, or a background one when
// the command runs outside Execute
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
