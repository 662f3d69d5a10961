package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/OldStager01/decision-brain/internal/auth"
	"github.com/OldStager01/decision-brain/internal/decision"
	"github.com/OldStager01/decision-brain/pkg/validation"
)

var flagOutput string

func main() {
	root := newRootCmd()
	root.SilenceUsage = true
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decisionctl",
		Short: "Offline client for the frozen decision core",
		Long:  "decisionctl runs the decision tables locally, prints the action scope and mints operator tokens for the API.",
	}

	cmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "json", "output format: json or yaml")

	cmd.AddCommand(decideCmd())
	cmd.AddCommand(scopeCmd())
	cmd.AddCommand(healthCmd())
	cmd.AddCommand(tokenCmd())

	return cmd
}

func decideCmd() *cobra.Command {
	var env, event, metricsJSON string

	c := &cobra.Command{
		Use:   "decide",
		Short: "Resolve an action for an environment and event type",
		RunE: func(cmd *cobra.Command, args []string) error {
			var metrics interface{}
			if err := json.Unmarshal([]byte(metricsJSON), &metrics); err != nil {
				return fmt.Errorf("parse --metrics: %w", err)
			}

			req := map[string]interface{}{"metrics": metrics}
			if cmd.Flags().Changed("env") {
				req["environment"] = env
			}
			if cmd.Flags().Changed("event") {
				req["event_type"] = event
			}

			return render(cmd.OutOrStdout(), decision.NewEngine().Decide(req))
		},
	}

	c.Flags().StringVar(&env, "env", "", "environment (dev, stage, prod)")
	c.Flags().StringVar(&event, "event", "", "event type (high_cpu, high_memory, crash, ...)")
	c.Flags().StringVar(&metricsJSON, "metrics", "{}", "metrics object as JSON")
	return c
}

func scopeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scope",
		Short: "Print the allowed actions per environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd.OutOrStdout(), decision.Scope())
		},
	}
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Print the decision core health status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd.OutOrStdout(), decision.Health())
		},
	}
}

func tokenCmd() *cobra.Command {
	var secret, subject, issuer string
	var ttl time.Duration

	c := &cobra.Command{
		Use:   "token",
		Short: "Mint an operator JWT for the protected API routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret is required")
			}
			if err := validation.ValidateSecret(secret); err != nil {
				return err
			}
			if subject == "" {
				return errors.New("--subject is required")
			}

			token, err := auth.NewService(secret, issuer, ttl).GenerateToken(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	c.Flags().StringVar(&secret, "secret", "", "HMAC secret shared with the server (api.auth.jwt_secret)")
	c.Flags().StringVar(&subject, "subject", "", "token subject")
	c.Flags().StringVar(&issuer, "issuer", "decision-brain", "token issuer (api.auth.jwt_issuer)")
	c.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return c
}

func render(w io.Writer, v interface{}) error {
	switch flagOutput {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output format %q (use json or yaml)", flagOutput)
	}
}
