package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/prefeitura-rio/app-matriculas/internal/logging"
	"github.com/prefeitura-rio/app-matriculas/internal/observability"
	"github.com/prefeitura-rio/app-matriculas/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// StoredCPF is a raw cpf value as found in storage
type StoredCPF struct {
	ID  primitive.ObjectID `bson:"_id"`
	CPF string             `bson:"cpf"`
}

// CPFRecordStore gives the normalizer raw access to stored cpf values
type CPFRecordStore interface {
	ScanCPFs(ctx context.Context, fn func(StoredCPF) error) error
	SetCPF(ctx context.Context, id primitive.ObjectID, cpf string) error
	UnsetCPF(ctx context.Context, id primitive.ObjectID) error
}

// InvalidCPF is a stored value whose digits are not a valid CPF
type InvalidCPF struct {
	ID     primitive.ObjectID
	Masked string
}

// CPFDuplicate groups records sharing one canonical CPF.
// KeptID is the record that keeps the value; the others are left untouched.
type CPFDuplicate struct {
	Masked       string
	KeptID       primitive.ObjectID
	DuplicateIDs []primitive.ObjectID
}

// NormalizeReport summarizes a normalization run.
// In a dry run Rewritten and Cleared count the writes that would be made.
type NormalizeReport struct {
	DryRun     bool
	Scanned    int
	Canonical  int
	Rewritten  int
	Cleared    int
	Invalid    []InvalidCPF
	Duplicates []CPFDuplicate
}

// Clean reports whether the unique CPF index can be built on the result
func (r *NormalizeReport) Clean() bool {
	return len(r.Invalid) == 0 && len(r.Duplicates) == 0
}

// CPFNormalizer rewrites stored CPFs to canonical form
type CPFNormalizer struct {
	store  CPFRecordStore
	logger *logging.SafeLogger
}

// NewCPFNormalizer creates a normalizer over store
func NewCPFNormalizer(store CPFRecordStore, logger *logging.SafeLogger) *CPFNormalizer {
	return &CPFNormalizer{store: store, logger: logger}
}

// Run scans every stored cpf. Blank values are removed and masked values
// rewritten to digits. Invalid values and values whose canonical form is
// held by more than one record are reported and left as they are, except
// that one record of each duplicate group keeps the value.
func (n *CPFNormalizer) Run(ctx context.Context, dryRun bool) (*NormalizeReport, error) {
	report := &NormalizeReport{DryRun: dryRun}
	monitor := observability.NewPerformanceMonitor("cpf_normalization", n.logger)
	defer monitor.End()
	groups := make(map[string][]StoredCPF)

	err := n.store.ScanCPFs(ctx, func(record StoredCPF) error {
		report.Scanned++
		canonical := utils.UnmaskCPF(record.CPF)

		switch {
		case canonical == "":
			report.Cleared++
			if dryRun {
				return nil
			}
			if err := n.store.UnsetCPF(ctx, record.ID); err != nil {
				return fmt.Errorf("failed to clear blank CPF of %s: %w", record.ID.Hex(), err)
			}
		case !utils.ValidateCPF(canonical):
			report.Invalid = append(report.Invalid, InvalidCPF{
				ID:     record.ID,
				Masked: observability.MaskCPF(canonical),
			})
			n.logger.Warn("invalid CPF in storage",
				zap.String("person_id", record.ID.Hex()),
				zap.String("cpf", observability.MaskCPF(canonical)))
		default:
			groups[canonical] = append(groups[canonical], record)
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("failed to scan stored CPFs: %w", err)
	}
	monitor.Checkpoint("scan")

	for _, canonical := range sortedKeys(groups) {
		records := groups[canonical]
		kept := pickKeeper(canonical, records)

		if len(records) > 1 {
			duplicate := CPFDuplicate{Masked: observability.MaskCPF(canonical), KeptID: kept.ID}
			for _, record := range records {
				if record.ID != kept.ID {
					duplicate.DuplicateIDs = append(duplicate.DuplicateIDs, record.ID)
				}
			}
			report.Duplicates = append(report.Duplicates, duplicate)
			n.logger.Warn("duplicated CPF in storage",
				zap.String("cpf", duplicate.Masked),
				zap.String("kept_id", kept.ID.Hex()),
				zap.Int("duplicates", len(duplicate.DuplicateIDs)))
		}

		if kept.CPF == canonical {
			report.Canonical++
			continue
		}
		report.Rewritten++
		if dryRun {
			continue
		}
		if err := n.store.SetCPF(ctx, kept.ID, canonical); err != nil {
			return report, fmt.Errorf("failed to rewrite CPF of %s: %w", kept.ID.Hex(), err)
		}
	}

	monitor.Checkpoint("rewrite")

	if !dryRun {
		observability.NormalizedCPFs.WithLabelValues("canonical").Add(float64(report.Canonical))
		observability.NormalizedCPFs.WithLabelValues("rewritten").Add(float64(report.Rewritten))
		observability.NormalizedCPFs.WithLabelValues("cleared").Add(float64(report.Cleared))
		observability.NormalizedCPFs.WithLabelValues("invalid").Add(float64(len(report.Invalid)))
		observability.NormalizedCPFs.WithLabelValues("duplicate").Add(float64(len(report.Duplicates)))
	}

	n.logger.Info("CPF normalization finished",
		zap.Bool("dry_run", dryRun),
		zap.Int("scanned", report.Scanned),
		zap.Int("canonical", report.Canonical),
		zap.Int("rewritten", report.Rewritten),
		zap.Int("cleared", report.Cleared),
		zap.Int("invalid", len(report.Invalid)),
		zap.Int("duplicates", len(report.Duplicates)))

	return report, nil
}

// pickKeeper prefers a record already in canonical form, then the oldest one
func pickKeeper(canonical string, records []StoredCPF) StoredCPF {
	sort.Slice(records, func(i, j int) bool {
		return records[i].ID.Hex() < records[j].ID.Hex()
	})
	for _, record := range records {
		if record.CPF == canonical {
			return record
		}
	}
	return records[0]
}

func sortedKeys(groups map[string][]StoredCPF) []string {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
