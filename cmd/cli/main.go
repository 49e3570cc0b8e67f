package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"cardiorisk/domain/clinical"
	"cardiorisk/domain/core"
	"cardiorisk/domain/prediction"
	"cardiorisk/internal"
	"cardiorisk/internal/config"
	"cardiorisk/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cardiorisk-cli",
		Short: "Heart disease risk prediction from the terminal",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err != nil {
				log.Println("No .env file found, using system environment variables")
			}
		},
	}

	rootCmd.AddCommand(
		newModelsCmd(),
		newPredictCmd(),
		newDescribeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadContainer builds the same container the servers use
func loadContainer(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(cfg.LogLevel))
	cfg.Metrics.Enabled = false

	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	loadCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := c.Load(loadCtx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the configured models and whether they loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			return runModels(cmd.OutOrStdout(), c)
		},
	}
}

func runModels(w io.Writer, c *container.Container) error {
	fmt.Fprintf(w, "🧠 MODELS\n")
	for _, st := range c.Predictions.Statuses() {
		if !st.Loaded {
			fmt.Fprintf(w, "❌ %-22s %s\n", st.Spec.Name, st.Error)
			continue
		}
		fmt.Fprintf(w, "✅ %-22s %s [%s]\n", st.Spec.Name, st.Info.Kind, st.Info.Checksum.Short())
	}
	return nil
}

func newPredictCmd() *cobra.Command {
	var model string
	var asJSON bool
	values := make(map[core.FeatureKey]*string, clinical.NumFeatures)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Assess one patient with one model or all of them",
		Long: `Assess one patient record. Unset fields take the form defaults.

Example: cardiorisk-cli predict --age 63 --sex 1 --cp 3 --trestbps 145 --chol 233 --model all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form := url.Values{}
			for key, v := range values {
				if *v != "" {
					form.Set(string(key), *v)
				}
			}
			record, err := clinical.ParseRecord(form)
			if err != nil {
				return err
			}

			c, err := loadContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			return runPredict(cmd.Context(), cmd.OutOrStdout(), c, record, model, asJSON)
		},
	}

	for _, f := range clinical.Catalog() {
		help := f.Label + " " + f.Range
		if len(f.Domain.Options) > 0 {
			opts := make([]string, len(f.Domain.Options))
			for i, o := range f.Domain.Options {
				opts[i] = fmt.Sprintf("%s=%s", clinical.FormatValue(o.Value), o.Label)
			}
			help = f.Label + " (" + strings.Join(opts, ", ") + ")"
		}
		values[f.Key] = cmd.Flags().String(string(f.Key), "", fmt.Sprintf("%s, default %s", help, clinical.FormatValue(f.Domain.Default)))
	}
	cmd.Flags().StringVar(&model, "model", "all", "model id or all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the assessment as JSON")
	return cmd
}

func runPredict(ctx context.Context, w io.Writer, c *container.Container, record clinical.Record, model string, asJSON bool) error {
	selection, err := c.Predictions.ParseSelection(model)
	if err != nil {
		return err
	}
	a, err := c.Predictions.Assess(ctx, record, selection)
	if err != nil {
		return err
	}

	if asJSON {
		data, err := json.MarshalIndent(a, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	fmt.Fprintf(w, "🩺 PATIENT\n")
	for _, fv := range record.Describe() {
		fmt.Fprintf(w, "%-32s %s\n", fv.Label, fv.Display)
	}

	fmt.Fprintf(w, "\n🔬 PREDICTIONS\n")
	for _, o := range a.Outcomes {
		if !o.OK() {
			fmt.Fprintf(w, "❌ %s: Error making prediction: %s\n", o.Name, o.Error)
			continue
		}
		p := o.Prediction
		fmt.Fprintf(w, "%s %s: %s\n", marker(p.Label), o.Name, p.Label)
		fmt.Fprintf(w, "   Risk Probability: %.1f%%, Confidence: %.1f%%\n", p.Probability*100, p.Confidence*100)
	}

	if e := a.Ensemble; e != nil {
		fmt.Fprintf(w, "\n📊 FINAL ASSESSMENT\n")
		verdict := "Low Risk of Heart Disease"
		if e.HighRisk() {
			verdict = "High Risk of Heart Disease"
		}
		fmt.Fprintf(w, "Overall: %s\n", verdict)
		fmt.Fprintf(w, "Average Risk Probability: %.1f%%\n", e.AverageProbability*100)
		fmt.Fprintf(w, "Models Detecting Risk: %s\n", e.Agreement())
	}
	return nil
}

func marker(l prediction.Label) string {
	if l.Positive() {
		return "⚠️ "
	}
	return "✅"
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe [feature]",
		Short: "Summarize one dataset column, or the target correlations",
		Long: `Without a feature, list every feature's correlation with the target in
descending order. With a feature, print its describe() summary.

Example: cardiorisk-cli describe chol`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			key := core.FeatureKey("")
			if len(args) == 1 {
				key = core.FeatureKey(args[0])
			}
			return runDescribe(cmd.Context(), cmd.OutOrStdout(), c, key)
		},
	}
}

func runDescribe(ctx context.Context, w io.Writer, c *container.Container, key core.FeatureKey) error {
	if _, err := c.Dataset(); err != nil {
		return err
	}

	if key == "" {
		report, err := c.Analyzer.Report(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "📈 CORRELATION WITH TARGET (%d records)\n", report.Overview.Records)
		for i, fc := range report.TargetRanking {
			coef := "n/a"
			if fc.Correlation.Valid() {
				coef = fmt.Sprintf("%+.3f", float64(fc.Correlation))
			}
			fmt.Fprintf(w, "%2d. %-10s %s\n", i+1, fc.Feature, coef)
		}
		return nil
	}

	fa, err := c.Analyzer.Feature(ctx, key)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "📈 %s\n", strings.ToUpper(string(fa.Feature)))
	for _, row := range fa.Summary.Rows() {
		fmt.Fprintf(w, "%-6s %.3f\n", row.Stat, row.Value)
	}
	return nil
}
