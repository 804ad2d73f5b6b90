package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/FanchonSora/V-Assistant/internal/dsl"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <utterance>",
		Short: "Show how an utterance is interpreted",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(strings.Join(args, " "))
		},
	}
}

func runParse(text string) error {
	intent, err := dsl.Parse(text)
	if err != nil {
		if dsl.IsParseError(err) {
			color.Red("cannot parse: %q", text)
			return nil
		}
		return err
	}

	bold := color.New(color.Bold)
	switch in := intent.(type) {
	case dsl.Greet:
		bold.Println("greet")
		if in.Name != "" {
			fmt.Printf("  name: %s\n", in.Name)
		}
	case dsl.Introduce:
		bold.Println("introduce")
	case dsl.Ask:
		bold.Println("ask")
		fmt.Printf("  question: %s\n", in.Question)
	case dsl.Instruction:
		bold.Println("help")
		fmt.Printf("  topic: %s\n", in.Topic)
	case dsl.Create:
		bold.Println("create")
		fmt.Printf("  title: %s\n", in.Title)
		fmt.Printf("  due: %s\n", in.Due)
		if in.Recurrence != "" {
			fmt.Printf("  recurrence: %s\n", in.Recurrence)
		}
		if in.Status != "" {
			fmt.Printf("  status: %s\n", in.Status)
		}
	case dsl.View:
		bold.Println("view")
		if in.DateFilter != nil {
			fmt.Printf("  date: %s\n", in.DateFilter.Format(dsl.DateLayout))
		}
	case dsl.Delete:
		bold.Println("delete")
		fmt.Printf("  title: %s\n", in.TitleRef)
		fmt.Printf("  due: %s\n", in.Due)
	case dsl.Modify:
		bold.Println("modify")
		fmt.Printf("  title: %s\n", in.TitleRef)
		fmt.Printf("  due: %s\n", in.Due)
		for key, value := range in.Updates {
			fmt.Printf("  set %s = %s\n", key, value)
		}
	case dsl.Confirm:
		bold.Println("confirm")
		fmt.Printf("  accepted: %v\n", in.Accepted)
	}
	return nil
}
