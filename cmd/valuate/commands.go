package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"corpval/pkg/core/projection"
	"corpval/pkg/core/scenario"
	"corpval/pkg/core/valuation"
)

// --- Metrics Command ---

var metricsCmd = &cobra.Command{
	Use:   "metrics [file]",
	Short: "Derive EBITDA, margins, growth and ratios from historical statements",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}
		records, _, err := scenario.Baseline(doc.Statements)
		if err != nil {
			return err
		}
		return printJSON(records)
	},
}

// --- Project Command ---

var projectCmd = &cobra.Command{
	Use:   "project [file]",
	Short: "Project free cash flow over the assumption horizon",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}
		_, baseline, err := scenario.Baseline(doc.Statements)
		if err != nil {
			return err
		}
		periods, err := projection.Project(baseline, doc.Assumptions)
		if err != nil {
			return err
		}
		ratios, err := projection.ResolveRatios(baseline, doc.Assumptions)
		if err != nil {
			return err
		}
		return printJSON(map[string]interface{}{
			"baseline":    baseline,
			"ratios":      ratios,
			"projections": periods,
		})
	},
}

// --- Single-model Commands ---

var dcfCmd = &cobra.Command{
	Use:   "dcf [file]",
	Short: "Discounted cash flow valuation of the base case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModel(args[0], valuation.KindDCF, false)
	},
}

var compsCmd = &cobra.Command{
	Use:   "comps [file]",
	Short: "Implied value range from peer multiples",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transactions, _ := cmd.Flags().GetBool("transactions")
		return runModel(args[0], valuation.KindMultiples, transactions)
	},
}

var lboCmd = &cobra.Command{
	Use:   "lbo [file]",
	Short: "Leveraged buyout simulation with IRR and MOIC",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModel(args[0], valuation.KindLBO, false)
	},
}

func init() {
	compsCmd.Flags().Bool("transactions", false, "use precedent transactions instead of trading comps")
}

func runModel(path string, model valuation.Kind, transactions bool) error {
	doc, err := loadDocument(path)
	if err != nil {
		return err
	}
	req := doc.Request()
	req.Transactions = transactions
	res, err := newEngine().Value(req, model)
	if err != nil {
		return err
	}
	return printJSON(res)
}

// --- Sensitivity Command ---

var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity [file]",
	Short: "Two-axis sensitivity grid over the document's sensitivity block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}
		if doc.Sensitivity == nil {
			return fmt.Errorf("%s has no sensitivity block", args[0])
		}

		ctx, cancel := runContext(cmd)
		defer cancel()

		grid, err := newEngine().Sensitivity(ctx, doc.Request(), doc.SensitivityModel(), doc.Sensitivity.Axis1, doc.Sensitivity.Axis2)
		if err != nil {
			return err
		}
		return printJSON(grid)
	},
}

// --- Scenarios Command ---

var scenariosCmd = &cobra.Command{
	Use:   "scenarios [file]",
	Short: "Value base, optimistic and pessimistic cases with every model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}
		req := doc.Request()
		if only, _ := cmd.Flags().GetStringSlice("scenario"); len(only) > 0 {
			req.Scenarios = only
		}

		ctx, cancel := runContext(cmd)
		defer cancel()

		report, err := newEngine().Run(ctx, req)
		if err != nil {
			return err
		}
		for _, o := range report.Scenarios {
			for _, e := range o.Errors {
				log.Printf("[CLI] %s/%s: %s", o.Scenario, e.Model, e.Message)
			}
		}
		return printJSON(report)
	},
}

func init() {
	scenariosCmd.Flags().StringSlice("scenario", nil, "scenarios to run (default: base,optimistic,pessimistic)")
}
