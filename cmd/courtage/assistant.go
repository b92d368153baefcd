package main

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/assurlink/courtage/internal/assistant"
	"github.com/assurlink/courtage/internal/config"
	"github.com/charmbracelet/glamour"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// newAssistant connects to Gemini with GEMINI_API_KEY
func newAssistant(cmd *cobra.Command) (*assistant.Assistant, error) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	model, _ := cmd.Flags().GetString("model")
	completer, err := assistant.NewGenAICompleter(commandContext(cmd), key, model)
	if err != nil {
		return nil, err
	}
	return assistant.New(completer, cliLogger(cmd).Named("assistant")), nil
}

// documentType guesses a document's MIME type from its extension, then its content
func documentType(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		t, _, _ = strings.Cut(t, ";")
		return t
	}
	t, _, _ := strings.Cut(http.DetectContentType(data), ";")
	return t
}

var extractCmd = &cobra.Command{
	Use:   "extract [document]",
	Short: "Extract the fields of a scanned claim document (PDF or image)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		a, err := newAssistant(cmd)
		if err != nil {
			return err
		}

		claim, err := a.ExtractClaim(commandContext(cmd), data, documentType(args[0], data))
		var missing *assistant.MissingFieldsError
		if err != nil && !(errors.As(err, &missing) && claim != nil) {
			return err
		}
		out, merr := json.MarshalIndent(claim, "", "  ")
		if merr != nil {
			return merr
		}
		if werr := emit(cmd, append(out, '\n')); werr != nil {
			return werr
		}
		// the partial claim is still printed for manual completion
		return err
	},
}

var pitchCmd = &cobra.Command{
	Use:   "pitch [input-file]",
	Short: "Write a sales argument for a quote (rendered markdown)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, tables, err := newEngine(cmd)
		if err != nil {
			return err
		}
		req, err := config.NewInputParser(tables).LoadFromFile(args[0])
		if err != nil {
			return err
		}
		q, err := engine.Quote(req)
		if err != nil {
			return err
		}
		a, err := newAssistant(cmd)
		if err != nil {
			return err
		}
		md, err := a.SalesPitch(commandContext(cmd), q)
		if err != nil {
			return err
		}

		if formatFlag(cmd, "terminal") == "markdown" {
			return emit(cmd, []byte(md+"\n"))
		}
		renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
		if err != nil {
			return err
		}
		rendered, err := renderer.Render(md)
		if err != nil {
			return err
		}
		return emit(cmd, []byte(rendered))
	},
}
