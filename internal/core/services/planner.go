package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/hangang-labs/aptsync/internal/core/domain"
	"github.com/hangang-labs/aptsync/internal/core/ports/driven"
	"github.com/hangang-labs/aptsync/internal/logger"
)

// Planner decides which page range a run pulls. The decision order is
// fixed: a resume override beats everything, then full mode, then a
// forced anchor identity, then the stored anchor, and finally the
// conservative head window when no anchor can be placed on the live
// dataset.
type Planner struct {
	locator driven.AnchorLocator
}

// NewPlanner creates a planner using the given anchor locator.
func NewPlanner(locator driven.AnchorLocator) *Planner {
	return &Planner{locator: locator}
}

// Plan computes the page range for one run. Upstream probes go through
// fetcher; the stored anchor comes from store. A failed anchor search
// degrades to the head window and is reported in the plan's Reason,
// never as an error: re-pulling a few head pages is always safe because
// the store upserts by identity.
func (p *Planner) Plan(ctx context.Context, fetcher driven.PageFetcher, store driven.RecordStore, settings domain.IngestSettings) (domain.IngestionPlan, error) {
	lastPage, err := fetcher.LastPage(ctx)
	if err != nil {
		return domain.IngestionPlan{}, fmt.Errorf("plan %s: %w", settings.Dataset, err)
	}
	if lastPage == 0 {
		return domain.IngestionPlan{Reason: "dataset is empty"}, nil
	}

	if settings.ResumePage > 0 {
		if settings.ResumePage > lastPage {
			return domain.IngestionPlan{
				Reason: fmt.Sprintf("resume page %d is past the tail (%d pages)", settings.ResumePage, lastPage),
			}, nil
		}
		return domain.IngestionPlan{
			StartPage: settings.ResumePage,
			EndPage:   lastPage,
			Reason:    fmt.Sprintf("resume override from page %d", settings.ResumePage),
		}, nil
	}

	if settings.Mode == domain.ModeFull {
		return domain.IngestionPlan{
			StartPage: 1,
			EndPage:   lastPage,
			Reason:    "full load",
		}, nil
	}

	anchorID := settings.ForcedAnchorID
	source := "forced"
	if anchorID == 0 {
		anchor, err := store.LatestAnchor(ctx, settings.Dataset)
		if errors.Is(err, domain.ErrNotFound) {
			// First run against a possibly huge feed: pull only the
			// head window. A full load is an explicit operator choice
			// via mode, never an implicit one.
			end := settings.HeadWindow
			if end > lastPage {
				end = lastPage
			}
			return domain.IngestionPlan{
				StartPage: 1,
				EndPage:   end,
				Reason:    "no anchor recorded, head window",
			}, nil
		}
		if err != nil {
			return domain.IngestionPlan{}, fmt.Errorf("plan %s: read anchor: %w", settings.Dataset, err)
		}
		anchorID = anchor.ID
		source = "stored"
	}

	page, err := p.locator.LocatePage(ctx, fetcher, anchorID, settings.ScanStrategy, settings.MaxScanPages)
	switch {
	case err == nil:
		return domain.IngestionPlan{
			StartPage:   1,
			EndPage:     page,
			AnchorPage:  page,
			AnchorFound: true,
			Reason:      fmt.Sprintf("%s anchor %d on page %d", source, anchorID, page),
		}, nil

	case errors.Is(err, domain.ErrAnchorNotFound):
		// The record may have been amended or removed upstream, or it
		// drifted past the scan budget. Pull the head window instead.
		end := settings.HeadWindow
		if end > lastPage {
			end = lastPage
		}
		logger.Warn("%s: %s anchor %d not found, falling back to head window of %d pages",
			settings.Dataset, source, anchorID, end)
		return domain.IngestionPlan{
			StartPage: 1,
			EndPage:   end,
			Reason:    fmt.Sprintf("%s anchor %d not found, head window", source, anchorID),
		}, nil

	case errors.Is(err, domain.ErrEmptyDataset):
		return domain.IngestionPlan{Reason: "dataset is empty"}, nil

	default:
		return domain.IngestionPlan{}, fmt.Errorf("plan %s: %w", settings.Dataset, err)
	}
}
