// Package mongo provides MongoDB implementations of the batch report archive
// and the deduction sheet file store. Reports and raw sheets are document
// data: written once per batch, read back for audits and retried delivery.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deducta-loan-ledger/internal/domain/report"
	"github.com/deducta-loan-ledger/internal/domain/shared"
)

const (
	// ReportCollectionName is the name of the batch report collection in MongoDB
	ReportCollectionName = "batch_reports"
)

// ReportRepository implements the report.Repository interface for MongoDB
type ReportRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewReportRepository creates a new MongoDB batch report repository
func NewReportRepository(logger *slog.Logger, db *mongo.Database) report.Repository {
	return &ReportRepository{
		db:     db,
		logger: logger,
	}
}

// Create archives a batch report after checking for duplicates.
// Returns ErrDuplicateReport when a report already exists for the period,
// which callers use to skip regeneration on a redelivered batch job.
func (r *ReportRepository) Create(ctx context.Context, rep *report.Report) error {
	collection := r.db.Collection(ReportCollectionName)

	existing, err := r.GetByPeriod(ctx, rep.Period)
	if err != nil && !errors.Is(err, report.ErrReportNotFound{}) {
		r.logger.Error("Failed to check for existing batch report",
			"period", rep.Period,
			"error", err)
		return fmt.Errorf("failed to check for existing batch report: %w", err)
	}

	if existing != nil {
		return report.ErrDuplicateReport{Period: rep.Period}
	}

	_, err = collection.InsertOne(ctx, rep)
	if err != nil {
		r.logger.Error("Failed to create batch report",
			"period", rep.Period,
			"error", err)
		return fmt.Errorf("failed to create batch report: %w", err)
	}

	return nil
}

// GetByPeriod retrieves the archived report for a payroll period.
// Returns ErrReportNotFound when no report exists for the period.
func (r *ReportRepository) GetByPeriod(ctx context.Context, period string) (*report.Report, error) {
	collection := r.db.Collection(ReportCollectionName)

	filter := bson.M{"period": period}
	var rep report.Report
	err := collection.FindOne(ctx, filter).Decode(&rep)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, report.ErrReportNotFound{Period: period}
		}
		r.logger.Error("Failed to get batch report",
			"period", period,
			"error", err)
		return nil, fmt.Errorf("failed to get batch report: %w", err)
	}

	return &rep, nil
}

// GetPending returns undelivered reports in creation order for the mailer's
// retry loop.
func (r *ReportRepository) GetPending(ctx context.Context, limit int) ([]*report.Report, error) {
	collection := r.db.Collection(ReportCollectionName)

	filter := bson.M{"status": shared.ReportStatusPending}
	findOptions := options.Find().
		SetSort(bson.M{"created_at": 1}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		r.logger.Error("Failed to get pending batch reports", "error", err)
		return nil, fmt.Errorf("failed to get pending batch reports: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []*report.Report
	if err := cursor.All(ctx, &reports); err != nil {
		r.logger.Error("Failed to decode pending batch reports", "error", err)
		return nil, fmt.Errorf("failed to decode pending batch reports: %w", err)
	}

	return reports, nil
}

// UpdateStatus updates the report's delivery status.
// Returns ErrReportNotFound if no report exists for the period.
func (r *ReportRepository) UpdateStatus(ctx context.Context, period string, status shared.ReportStatus) error {
	collection := r.db.Collection(ReportCollectionName)

	filter := bson.M{"period": period}
	update := bson.M{
		"$set": bson.M{
			"status":          status,
			"last_attempt_at": time.Now(),
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to update batch report status",
			"period", period,
			"status", status,
			"error", err)
		return fmt.Errorf("failed to update batch report status: %w", err)
	}

	if result.MatchedCount == 0 {
		return report.ErrReportNotFound{Period: period}
	}

	return nil
}

// IncrementAttempts bumps the delivery attempt counter and stamps the attempt
// time. The mailer gives up once the configured maximum is reached.
func (r *ReportRepository) IncrementAttempts(ctx context.Context, period string) error {
	collection := r.db.Collection(ReportCollectionName)

	filter := bson.M{"period": period}
	update := bson.M{
		"$inc": bson.M{"attempts": 1},
		"$set": bson.M{"last_attempt_at": time.Now()},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to increment batch report attempts",
			"period", period,
			"error", err)
		return fmt.Errorf("failed to increment batch report attempts: %w", err)
	}

	if result.MatchedCount == 0 {
		return report.ErrReportNotFound{Period: period}
	}

	return nil
}
