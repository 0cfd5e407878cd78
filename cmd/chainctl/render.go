package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

const hashPreview = 12

func renderBlocks(blocks []domain.Block) error {
	data := pterm.TableData{{"#", "Event", "Type", "Date", "Tenant", "Amount", "Hash"}}
	for _, b := range blocks {
		amount := "-"
		if b.Amount.Valid {
			amount = b.Amount.Decimal.String()
		}
		data = append(data, []string{
			strconv.Itoa(b.Index),
			deref(b.EventID),
			b.Type,
			deref(b.EventDate),
			deref(b.TenantID),
			amount,
			short(b.Hash),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func renderSnapshots(heads []domain.ChainHeadSnapshot) {
	data := pterm.TableData{{"Snapshot", "Tenant", "Height", "Root hash", "Event", "Recorded"}}
	for _, s := range heads {
		data = append(data, []string{
			s.ID.String(),
			s.TenantID,
			strconv.Itoa(s.BlockHeight),
			short(s.RootHash),
			deref(s.EventID),
			s.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		pterm.Error.Println(err)
	}
}

func renderVerification(res *domain.VerificationResult) {
	box := pterm.DefaultBox.WithTitle(string(res.Outcome)).WithTitleTopCenter()

	var body string
	switch res.Outcome {
	case domain.OutcomeVerified:
		body = fmt.Sprintf("tenant  %s\nheight  %d\nroot    %s", res.TenantID, res.BlockHeight, res.RootHash)
	case domain.OutcomeHashMismatch:
		body = fmt.Sprintf("tenant    %s\nexpected  %s\nactual    %s", res.TenantID, res.ExpectedHash, res.ActualHash)
	case domain.OutcomeHeightMismatch:
		body = fmt.Sprintf("tenant    %s\nexpected  %d\nactual    %d", res.TenantID, res.ExpectedHeight, res.ActualHeight)
	case domain.OutcomeNoSnapshotsYet:
		body = "No chain head snapshots have been recorded"
		if res.TenantID != "" {
			body += " for tenant " + res.TenantID
		}
	default:
		body = fmt.Sprintf("tenant  %s", res.TenantID)
		if res.Snapshot != nil {
			body += "\nsnapshot " + res.Snapshot.ID.String()
		}
	}
	box.Println(body)

	switch {
	case res.OK():
		pterm.Success.Println("Chain head matches")
	case res.IsDiscrepancy():
		pterm.Error.Println("Chain head does not match the rebuilt chain")
	default:
		pterm.Warning.Println("Verification could not be completed")
	}
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func short(hash string) string {
	if len(hash) <= hashPreview {
		return hash
	}
	return hash[:hashPreview]
}
