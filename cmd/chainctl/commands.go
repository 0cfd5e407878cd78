package main

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/josh-kwaku/rentchain-audit/internal/chain"
	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Rebuild and print a chain",
	Long: `Rebuild the hash chain from ledger events and print every block.
Without --tenant the global chain over all events is shown. The rebuilt
chain is re-validated before it is printed.`,
	Example: `  chainctl chain
  chainctl chain --tenant tenant-42`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		var blocks []domain.Block
		if tenantFlag != "" {
			blocks, err = a.explorer.TenantChain(cmd.Context(), tenantFlag)
		} else {
			blocks, err = a.explorer.GlobalChain(cmd.Context())
		}
		if err != nil {
			return err
		}
		if len(blocks) == 0 {
			pterm.Info.Println("No ledger events, chain is empty")
			return nil
		}
		if err := chain.Validate(blocks); err != nil {
			return err
		}

		if err := renderBlocks(blocks); err != nil {
			return err
		}
		head, _ := chain.Head(blocks)
		pterm.Success.Printfln("%d blocks, head %s", len(blocks), head.Hash)
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare the latest chain head snapshot with a rebuilt chain",
	Long: `Verify rebuilds the chain and compares it with the most recent stored
snapshot, or the tenant's most recent snapshot with --tenant.
Exits 2 when the stored head does not match.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		var res *domain.VerificationResult
		if tenantFlag != "" {
			res, err = a.verifier.VerifyTenant(cmd.Context(), tenantFlag)
		} else {
			res, err = a.verifier.Verify(cmd.Context())
		}
		if err != nil {
			return err
		}

		renderVerification(res)
		if res.IsDiscrepancy() {
			return errDiscrepancy
		}
		if !res.OK() {
			return fmt.Errorf("verification inconclusive: %s", res.Outcome)
		}
		return nil
	},
}

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Record a chain head snapshot for a tenant",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if tenantFlag == "" {
			return errors.New("--tenant is required")
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		snap, err := a.checkpoints.Checkpoint(cmd.Context(), tenantFlag)
		if err != nil {
			return err
		}
		if snap == nil {
			pterm.Warning.Printfln("Tenant %s has no events, nothing recorded", tenantFlag)
			return nil
		}
		renderSnapshots([]domain.ChainHeadSnapshot{*snap})
		pterm.Success.Println("Checkpoint recorded")
		return nil
	},
}

var headsCmd = &cobra.Command{
	Use:   "heads",
	Short: "List a tenant's chain head snapshots, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if tenantFlag == "" {
			return errors.New("--tenant is required")
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		heads, err := a.explorer.ChainHeads(cmd.Context(), tenantFlag, limitFlag)
		if err != nil {
			return err
		}
		if len(heads) == 0 {
			pterm.Info.Printfln("No snapshots for tenant %s", tenantFlag)
			return nil
		}
		renderSnapshots(heads)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&tenantFlag, "tenant", "t", "", "Tenant id")
	headsCmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum snapshots to list (max 100)")

	rootCmd.AddCommand(chainCmd, verifyCmd, checkpointCmd, headsCmd)
}
