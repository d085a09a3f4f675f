package main

import (
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/moneysplit/moneysplit/internal/calculation"
	"github.com/moneysplit/moneysplit/internal/config"
	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/moneysplit/moneysplit/internal/output"
)

// simpleCLILogger implements calculation.Logger using the standard log package
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "moneysplit",
	Short: "Tax and distribution calculator for shared projects",
	Long:  "Calculates tax burden and optimal profit distribution for group projects across jurisdictions",
}

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Calculate tax for one strategy",
	RunE: func(cmd *cobra.Command, args []string) error {
		fin, country, state, err := financialsFromFlags(cmd)
		if err != nil {
			return err
		}

		taxType, _ := cmd.Flags().GetString("tax-type")
		structure, err := domain.ParseTaxStructure(taxType)
		if err != nil {
			return err
		}
		methodFlag, _ := cmd.Flags().GetString("method")
		method, err := domain.ParseDistributionMethod(methodFlag)
		if err != nil {
			return err
		}
		salaryFlag, _ := cmd.Flags().GetString("salary")
		salary := decimal.Zero
		if salaryFlag != "" {
			salary, err = decimal.NewFromString(salaryFlag)
			if err != nil {
				return fmt.Errorf("invalid --salary value %q: %w", salaryFlag, err)
			}
		}

		engine, err := engineFromFlags(cmd)
		if err != nil {
			return err
		}
		res, err := engine.Calculate(fin, country, structure, method, salary, state)
		if err != nil {
			return err
		}
		return render(cmd, func(f output.Formatter) (string, error) {
			return f.FormatResult(res)
		})
	},
}

var optimalCmd = &cobra.Command{
	Use:   "optimal",
	Short: "Compare every strategy and pick the best",
	RunE: func(cmd *cobra.Command, args []string) error {
		fin, country, state, err := financialsFromFlags(cmd)
		if err != nil {
			return err
		}
		engine, err := engineFromFlags(cmd)
		if err != nil {
			return err
		}
		rec, err := engine.FindOptimal(fin, country, state)
		if err != nil {
			return err
		}
		return render(cmd, func(f output.Formatter) (string, error) {
			return f.FormatRecommendation(rec)
		})
	},
}

var bracketsCmd = &cobra.Command{
	Use:   "brackets [country]",
	Short: "Show the bracket schedules in effect",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rulesFile, _ := cmd.Flags().GetString("rules")
		reg, err := config.LoadRegistry(rulesFile)
		if err != nil {
			return err
		}

		countries := reg.Jurisdictions()
		if len(args) == 1 {
			countries = []string{args[0]}
		}
		for _, country := range countries {
			for _, class := range []domain.TaxClass{domain.ClassIndividual, domain.ClassBusiness} {
				table, err := reg.Brackets(country, class)
				if err != nil {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", country, class)
				for _, b := range table {
					if b.Unbounded {
						fmt.Fprintf(cmd.OutOrStdout(), "  above previous limit: %s%%\n", b.Rate.Mul(decimal.NewFromInt(100)).StringFixed(1))
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "  up to %s: %s%%\n", b.Limit.StringFixed(0), b.Rate.Mul(decimal.NewFromInt(100)).StringFixed(1))
				}
			}
			if p := reg.Profile(country); p != nil {
				for _, nt := range p.FixedPersonal {
					fmt.Fprintf(cmd.OutOrStdout(), "%s fixed schedule: %s (%d brackets)\n", country, nt.Name, len(nt.Table))
				}
			}
		}
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <rules-file>",
	Short: "Validate a jurisdiction rules file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := config.LoadRegistry(args[0])
		if err != nil {
			return err
		}
		if err := reg.Validate(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid (%s)\n", args[0], strings.Join(reg.Jurisdictions(), ", "))
		return nil
	},
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "moneysplit %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(os.Stdout, bi.Main.Path)
			}
		},
	}
}

// financialsFromFlags reads the shared project flags.
func financialsFromFlags(cmd *cobra.Command) (domain.ProjectFinancials, string, string, error) {
	var fin domain.ProjectFinancials

	revenueFlag, _ := cmd.Flags().GetString("revenue")
	revenue, err := decimal.NewFromString(revenueFlag)
	if err != nil {
		return fin, "", "", fmt.Errorf("invalid --revenue value %q: %w", revenueFlag, err)
	}
	costsFlag, _ := cmd.Flags().GetString("costs")
	costs, err := decimal.NewFromString(costsFlag)
	if err != nil {
		return fin, "", "", fmt.Errorf("invalid --costs value %q: %w", costsFlag, err)
	}
	people, _ := cmd.Flags().GetInt("people")
	country, _ := cmd.Flags().GetString("country")
	state, _ := cmd.Flags().GetString("state")

	fin = domain.ProjectFinancials{Revenue: revenue, TotalCosts: costs, NumPeople: people}
	if err := fin.Validate(); err != nil {
		return fin, "", "", err
	}
	return fin, country, state, nil
}

func engineFromFlags(cmd *cobra.Command) (*calculation.Engine, error) {
	rulesFile, _ := cmd.Flags().GetString("rules")
	reg, err := config.LoadRegistry(rulesFile)
	if err != nil {
		return nil, err
	}
	engine := calculation.NewEngine(reg)
	if debugMode, _ := cmd.Flags().GetBool("debug"); debugMode {
		engine.Debug = true
		engine.SetLogger(simpleCLILogger{})
	}
	return engine, nil
}

func render(cmd *cobra.Command, format func(output.Formatter) (string, error)) error {
	name, _ := cmd.Flags().GetString("format")
	formatter := output.GetFormatterByName(name)
	if formatter == nil {
		return fmt.Errorf("unsupported format: %s", name)
	}
	out, err := format(formatter)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func addProjectFlags(cmd *cobra.Command) {
	cmd.Flags().String("revenue", "0", "total project revenue")
	cmd.Flags().String("costs", "0", "total project costs")
	cmd.Flags().Int("people", 1, "number of people splitting the project")
	cmd.Flags().String("country", "US", "jurisdiction code (US, Spain, UK, Canada, ...)")
	cmd.Flags().String("state", "", "optional US state code (CA, NY, TX, FL)")
	cmd.Flags().String("rules", "", "jurisdiction rules YAML overriding built-in defaults")
	cmd.Flags().String("format", "console", "output format: console, csv, json")
	cmd.Flags().Bool("debug", false, "enable engine debug logging")
}

func main() {
	addProjectFlags(calculateCmd)
	calculateCmd.Flags().String("tax-type", "Individual", "tax structure: Individual or Business")
	calculateCmd.Flags().String("method", "", "distribution method for Business: Salary, Dividend, Mixed, Reinvest")
	calculateCmd.Flags().String("salary", "", "salary amount for the Mixed method (auto-optimized when omitted)")

	addProjectFlags(optimalCmd)

	bracketsCmd.Flags().String("rules", "", "jurisdiction rules YAML overriding built-in defaults")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(optimalCmd)
	rootCmd.AddCommand(bracketsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
