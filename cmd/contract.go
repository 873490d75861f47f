package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"nhs-dm-tool/internal/catalog"
	"nhs-dm-tool/internal/contract"
	"nhs-dm-tool/internal/domain"
	"nhs-dm-tool/internal/semantic"
)

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Build the mapping contract for every target field",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runContract(cmd.Context(), cfg)
	},
}

func init() {
	RootCmd.AddCommand(contractCmd)
	contractCmd.Flags().String("policy-file", "", "mapping resolution policy JSON")
	bindFlag(contractCmd, "policy-file", "paths.policy_file")
}

func runContract(_ context.Context, c *Config) error {
	src, err := catalog.Load(c.Paths.SourceCatalog)
	if err != nil {
		return err
	}
	target, err := catalog.LoadHeaderDir(c.Paths.TargetHeadersDir)
	if err != nil {
		return err
	}
	policy, err := contract.LoadPolicy(c.Paths.PolicyFile)
	if err != nil {
		return fmt.Errorf("failed to load policy: %w", err)
	}

	cls := contract.NewClassifier(src)
	cls.Nearest = semantic.NewController(
		semantic.NewHintedResolver(semantic.NewIndex(src), semantic.TargetHintTables, semantic.PriorityTables))
	b := contract.NewBuilder(cls, log.Logger)
	b.Policy = policy
	ct := b.Build(target)

	if err := contract.Write(c.Paths.ContractFile, ct.Rows); err != nil {
		return err
	}
	summaryPath := filepath.Join(c.Paths.ReportDir, contract.SummaryFile)
	if err := ct.WriteSummary(summaryPath); err != nil {
		return err
	}

	fmt.Println("Mapping contract generated.")
	fmt.Printf("Target tables: %d, fields: %d\n", ct.TableCount, len(ct.Rows))
	for _, class := range domain.SortedKeys(ct.ClassCounts) {
		fmt.Printf("  %-24s %d\n", class, ct.ClassCounts[class])
	}
	fmt.Printf("Policy overrides: %d\n", ct.OverrideCount)
	fmt.Printf("Unresolved fields: %d\n", len(ct.Unresolved()))
	fmt.Printf("Contract: %s\n", c.Paths.ContractFile)
	fmt.Printf("Summary: %s\n", summaryPath)
	return nil
}
