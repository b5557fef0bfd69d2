package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pandabrain/pandabrain/IO"
	"github.com/pandabrain/pandabrain/brain"
	"github.com/pandabrain/pandabrain/params"
	"github.com/pandabrain/pandabrain/store"
)

var (
	flagConfig  string
	flagWeights string
	flagStore   string
)

var rootCmd = &cobra.Command{
	Use:           "pandabrain",
	Short:         "Intent/sentiment/preference classifier for chat messages",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to model_config.json (default: built-in config)")
	rootCmd.PersistentFlags().StringVar(&flagWeights, "weights", "", "override checkpoint path")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "data/memory.sqlite3", "interaction store path")

	rootCmd.AddCommand(trainCmd, predictCmd, learnCmd, chatCmd)

	trainCmd.Flags().IntP("epochs", "e", 0, "number of training epochs (0 = config default)")
	trainCmd.Flags().StringP("data", "d", "references/training_data.json", "training corpus path")
	trainCmd.Flags().Bool("retrain", false, "train from scratch instead of fine-tuning existing weights")
	trainCmd.Flags().BoolP("quiet", "q", false, "suppress progress output")
	trainCmd.Flags().Bool("include-learned", false, "append interactions recorded by 'learn' to the corpus")

	predictCmd.Flags().BoolP("verbose", "v", false, "show all class scores")

	learnCmd.Flags().String("intent", "", "intent label")
	learnCmd.Flags().String("sentiment", "", "sentiment label")
	learnCmd.Flags().String("preference", "", "preference label")
}

func loadConfig() (params.Config, error) {
	cfg := params.DefaultConfig()
	if flagConfig != "" {
		var err error
		cfg, err = params.LoadConfig(flagConfig)
		if err != nil {
			return params.Config{}, err
		}
	}
	if flagWeights != "" {
		cfg.WeightsPath = flagWeights
	}
	return cfg, nil
}

// loadTrainedBrain builds a Brain and restores its checkpoint, reporting
// partial restores on stderr.
func loadTrainedBrain(cfg params.Config) (*brain.Brain, error) {
	b, err := brain.New(cfg, nil)
	if err != nil {
		return nil, err
	}
	report, err := b.Load("")
	if err != nil {
		return nil, err
	}
	if report.Partial() {
		fmt.Fprintf(os.Stderr, "Warning: partial checkpoint: missing heads %v, skipped heads %v\n",
			report.Missing, report.Skipped)
	}
	return b, nil
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the network on a labeled corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		epochs, _ := cmd.Flags().GetInt("epochs")
		dataPath, _ := cmd.Flags().GetString("data")
		retrain, _ := cmd.Flags().GetBool("retrain")
		quiet, _ := cmd.Flags().GetBool("quiet")
		includeLearned, _ := cmd.Flags().GetBool("include-learned")

		samples, err := IO.LoadSamples(dataPath)
		if err != nil {
			return err
		}

		if includeLearned {
			st, err := store.Open(flagStore)
			if err != nil {
				return err
			}
			learned, err := st.Interactions(0)
			st.Close()
			if err != nil {
				return err
			}
			if !quiet && len(learned) > 0 {
				fmt.Printf("  Including %d learned interactions\n", len(learned))
			}
			samples = append(samples, learned...)
		}

		b, err := brain.New(cfg, nil)
		if err != nil {
			return err
		}
		if !retrain && b.IsTrained() {
			if _, err := b.Load(""); err == nil && !quiet {
				fmt.Println("  Loaded existing model weights (fine-tuning)")
			}
		}

		if !quiet {
			fmt.Printf("  Training samples: %d\n", len(samples))
		}
		history, err := b.Train(samples, epochs, 0, !quiet)
		if err != nil {
			return err
		}
		if err := b.Save(""); err != nil {
			return err
		}

		run := IO.Run{
			Timestamp: time.Now().UTC(),
			Epochs:    len(history),
			Samples:   len(samples),
		}
		if len(history) > 0 {
			run.InitialLoss = history[0]
			run.FinalLoss = history[len(history)-1]
		}
		if err := IO.AppendRun(cfg.TrainLogPath, run); err != nil {
			fmt.Fprintln(os.Stderr, "Warning: couldn't update training log:", err)
		}

		if !quiet {
			fmt.Printf("  Training complete! Final loss: %.4f\n", run.FinalLoss)
			fmt.Printf("  Model saved to: %s\n", cfg.WeightsPath)
			quickTest(b, samples)
		}
		return nil
	},
}

// quickTest echoes predictions for a few corpus messages, same sanity check
// the training pipeline always printed.
func quickTest(b *brain.Brain, samples []IO.Sample) {
	n := 4
	if len(samples) < n {
		n = len(samples)
	}
	fmt.Println("\n--- Quick Test ---")
	for _, s := range samples[:n] {
		preds, err := b.Predict(s.Text)
		if err != nil {
			return
		}
		fmt.Printf("  %q\n", s.Text)
		for name, p := range preds {
			fmt.Printf("    -> %s: %s (%.0f%%)\n", name, p.Label, p.Confidence*100)
		}
	}
}

var predictCmd = &cobra.Command{
	Use:   "predict [message...]",
	Short: "Classify a message (reads stdin when no args given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")

		message := strings.TrimSpace(strings.Join(args, " "))
		if message == "" {
			raw, _ := io.ReadAll(os.Stdin)
			message = strings.TrimSpace(string(raw))
		}
		if message == "" {
			return fmt.Errorf("empty message")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		b, err := loadTrainedBrain(cfg)
		if err != nil {
			return err
		}
		preds, err := b.Predict(message)
		if err != nil {
			return err
		}

		model := fmt.Sprintf("Panda-Brain-v%d", cfg.Version)
		var out any
		if verbose {
			out = map[string]any{"input": message, "predictions": preds, "model": model}
		} else {
			compact := map[string]any{"input": message, "model": model}
			for name, p := range preds {
				compact[name] = p.Label
				compact[name+"_confidence"] = p.Confidence
			}
			out = compact
		}
		enc, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(enc))
		return nil
	},
}

var learnCmd = &cobra.Command{
	Use:   "learn <message>",
	Short: "Learn from one labeled interaction",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		labels := map[string]string{}
		for _, name := range []string{"intent", "sentiment", "preference"} {
			if v, _ := cmd.Flags().GetString(name); v != "" {
				labels[name] = v
			}
		}
		message := strings.Join(args, " ")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		b, err := loadTrainedBrain(cfg)
		if err != nil {
			return err
		}
		if !b.LearnOne(message, labels) {
			return fmt.Errorf("could not learn — check labels")
		}
		if err := b.Save(""); err != nil {
			return err
		}

		st, err := store.Open(flagStore)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.RecordInteraction(message, labels); err != nil {
			return err
		}

		fmt.Printf("Learned %q as %v\n", message, labels)
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive classification loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		b, err := loadTrainedBrain(cfg)
		if err != nil {
			return err
		}
		st, err := store.Open(flagStore)
		if err != nil {
			return err
		}
		defer st.Close()

		reader := bufio.NewReader(os.Stdin)
		fmt.Println("PandaBrain chat. Type 'exit' to quit.")
		for {
			fmt.Print("You: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				break
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == "exit" {
				break
			}
			st.AddMessage("user", line)

			preds, err := b.Predict(line)
			if err != nil {
				return err
			}
			var parts []string
			for name, p := range preds {
				parts = append(parts, fmt.Sprintf("%s=%s (%.0f%%)", name, p.Label, p.Confidence*100))
			}
			reply := strings.Join(parts, "  ")
			fmt.Println("Brain:", reply)
			st.AddMessage("brain", reply)
		}
		return nil
	},
}
