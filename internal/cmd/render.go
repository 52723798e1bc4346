// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	charm "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"

	"github.com/go-compose/compose"
)

var (
	templateRef string
	modelFile   string
	classpath   string
	subject     string
	from        string
	to          []string
	outFile     string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a template into a MIME message",
	Long: `Render resolves a template with the given model, inlines its
stylesheets and images and writes the resulting MIME message.

Without extension, the template reference is completed with the
extensions of the HTML and the text variant. A variant that does not
exist is omitted.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&templateRef, "template", "t", "", "template reference, e.g. classpath:mail/welcome")
	renderCmd.Flags().StringVarP(&modelFile, "model", "m", "", "JSON/JSONC file holding the template model")
	renderCmd.Flags().StringVar(&classpath, "classpath", "", "directory served by the classpath lookup (default: config or .)")
	renderCmd.Flags().StringVarP(&subject, "subject", "s", "", "explicit subject of the message")
	renderCmd.Flags().StringVar(&from, "from", "", "sender address")
	renderCmd.Flags().StringSliceVar(&to, "to", nil, "recipient addresses")
	renderCmd.Flags().StringVarP(&outFile, "eml", "o", "", "write the message to this file instead of stdout")
	_ = renderCmd.MarkFlagRequired("template")
}

func runRender(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	model, err := loadModel(modelFile)
	if err != nil {
		return err
	}

	opts := []compose.ComposerOption{compose.WithComposerLogger(pipelineLogger())}
	switch {
	case classpath != "":
		opts = append(opts, compose.WithClasspath(os.DirFS(classpath)))
	case cfg.Resources.ClasspathDir == "":
		opts = append(opts, compose.WithClasspath(os.DirFS(".")))
	}
	composer, err := compose.NewComposer(cfg, opts...)
	if err != nil {
		return err
	}

	m := compose.NewMsg()
	if subject != "" {
		m.Subject(subject)
	}
	if from != "" {
		if err = m.From(from); err != nil {
			return err
		}
	}
	if len(to) > 0 {
		if err = m.To(to...); err != nil {
			return err
		}
	}
	m.SetBodyTemplate(templateRef, model)
	if err = composer.Compose(m); err != nil {
		return err
	}
	charm.Info("message rendered", "subject", m.GetSubject(), "embeds", len(m.GetEmbeds()))

	var w io.Writer = cmd.OutOrStdout()
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	if _, err = m.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// loadModel reads a JSON model. Comments and trailing commas are allowed.
func loadModel(path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	var model any
	if err = json.Unmarshal(jsonc.ToJSON(data), &model); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	return model, nil
}
