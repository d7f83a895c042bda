/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/vapi-kb/config"
	"github.com/tieubaoca/vapi-kb/database"
	"github.com/tieubaoca/vapi-kb/service"
)

const unstructuredTestText = "This is a test document to verify Unstructured API connectivity."

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify connectivity to Weaviate, Vapi and Unstructured",
}

var checkWeaviateCmd = &cobra.Command{
	Use:   "weaviate",
	Short: "Connect to Weaviate and count records in the class",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireConfig(config.NeedWeaviate); err != nil {
			return err
		}
		store, err := database.NewWeaviateStore(cfg.Weaviate)
		if err != nil {
			return err
		}

		meta, err := store.Meta(cmd.Context())
		if err != nil {
			printFailure("Weaviate at %s is unreachable: %v", store.URL(), err)
			return err
		}
		printSuccess("Connected to Weaviate %s at %s", meta.Version, store.URL())
		if len(meta.Modules) > 0 {
			fmt.Printf("  Modules: %s\n", strings.Join(meta.Modules, ", "))
		}

		count, err := store.Count(cmd.Context(), store.ClassName())
		if err != nil {
			printFailure("Could not count %s: %v", store.ClassName(), err)
			return err
		}
		printSuccess("%s holds %d objects", store.ClassName(), count)
		return nil
	},
}

var checkSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "List classes and sample objects from each",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireConfig(config.NeedWeaviate); err != nil {
			return err
		}
		sample, _ := cmd.Flags().GetInt("sample")
		store, err := database.NewWeaviateStore(cfg.Weaviate)
		if err != nil {
			return err
		}

		classes, err := store.ListClasses(cmd.Context())
		if err != nil {
			printFailure("Failed to read schema: %v", err)
			return err
		}
		printSuccess("Found %d classes", len(classes))
		for _, class := range classes {
			printInfo("%s (vectorizer: %s)", class.Name, orNone(class.Vectorizer))
			fmt.Printf("  Properties: %s\n", strings.Join(class.Properties, ", "))
			ids, err := store.SampleObjects(cmd.Context(), class.Name, sample)
			if err != nil {
				printFailure("  Could not sample %s: %v", class.Name, err)
				continue
			}
			fmt.Printf("  Sample ids: %s\n", orNone(strings.Join(ids, ", ")))
		}
		return nil
	},
}

var checkVapiCmd = &cobra.Command{
	Use:   "vapi",
	Short: "List assistants and phone numbers on the Vapi account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireConfig(config.NeedVapi); err != nil {
			return err
		}
		client := service.NewVapiClient(cfg.Vapi)

		assistants, err := client.ListAssistants(cmd.Context(), 0)
		if err != nil {
			printFailure("Vapi connection failed: %v", err)
			return err
		}
		printSuccess("Connected to Vapi, %d assistants", len(assistants))
		for i, a := range assistants {
			if i == 5 {
				break
			}
			fmt.Printf("  %s  %s\n", a.ID, a.Name)
		}

		numbers, err := client.ListPhoneNumbers(cmd.Context())
		if err != nil {
			printFailure("Could not list phone numbers: %v", err)
			return err
		}
		printSuccess("%d phone numbers", len(numbers))
		for i, n := range numbers {
			if i == 3 {
				break
			}
			fmt.Printf("  %s  %s (%s)\n", n.ID, n.Number, n.Provider)
		}
		return nil
	},
}

var checkUnstructuredCmd = &cobra.Command{
	Use:   "unstructured",
	Short: "Partition a short test text with the fast strategy",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireConfig(config.NeedUnstructured); err != nil {
			return err
		}
		client := service.NewUnstructuredClient(cfg.Unstructured).WithStrategy("fast")
		elements, err := client.Partition(cmd.Context(), "test.txt", unstructuredTestText)
		if err != nil {
			printFailure("Unstructured API failed: %v", err)
			return err
		}
		printSuccess("Unstructured API returned %d elements", len(elements))
		for _, el := range elements {
			fmt.Printf("  [%s] %s\n", el.Type, el.Text)
		}
		return nil
	},
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.AddCommand(checkWeaviateCmd, checkSchemaCmd, checkVapiCmd, checkUnstructuredCmd)
	checkSchemaCmd.Flags().Int("sample", 2, "Objects to sample per class")
}
