// tagpreview renders an attendee tag to a local PDF file using the same
// controller path as the bot's "Download tag" button.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"checkinbot/internal/db/models"
	"checkinbot/internal/notify"
	"checkinbot/internal/roster"
	"checkinbot/internal/tag"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var name, templatePath, outDir string

	flagSet := pflag.NewFlagSet("tagpreview", pflag.ContinueOnError)
	flagSet.StringVarP(&name, "name", "n", "", "name printed on the tag")
	flagSet.StringVarP(&templatePath, "template", "t", "", "path to a YAML tag template (default: built-in badge)")
	flagSet.StringVarP(&outDir, "out", "o", ".", "directory the PDF is written to")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	template := tag.DefaultTemplate()
	if templatePath != "" {
		var err error
		if template, err = tag.LoadTemplate(templatePath); err != nil {
			return err
		}
	}

	now := time.Now()
	record := &models.CheckInRecord{
		UserID:      "preview",
		EventID:     uuid.New(),
		Name:        name,
		CheckedInAt: &now,
	}

	ctrl := roster.New(record, roster.Deps{
		Generator: tag.NewPDFGenerator(),
		Template:  template,
		Delivery:  &fileDelivery{dir: outDir},
		Notifier:  notify.LogSink{Prefix: "tagpreview "},
	})

	handle, err := ctrl.GenerateTag(context.Background())
	if err != nil {
		return err
	}
	fmt.Println(handle.URL)
	return nil
}
