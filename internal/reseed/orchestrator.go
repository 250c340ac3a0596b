// Package reseed wipes the menu tables and recreates them from a dataset,
// keeping references between rows consistent and tolerating row failures.
package reseed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/johnwards/menuseed/internal/blob"
	"github.com/johnwards/menuseed/internal/dataset"
	"github.com/johnwards/menuseed/internal/domain"
	"github.com/johnwards/menuseed/internal/money"
	"github.com/johnwards/menuseed/internal/store"
)

// Options configures an Orchestrator. Zero values select defaults.
type Options struct {
	Tables      domain.Tables
	Blobs       blob.Store // cleared during Erase when Bucket is also set
	Bucket      string
	Concurrency int
	Logger      *slog.Logger
	Recorder    Recorder
}

// Orchestrator runs the reseed state machine.
type Orchestrator struct {
	rows store.RowStore
	data *dataset.Dataset
	opts Options
	log  *slog.Logger
	rec  Recorder
}

// New creates an Orchestrator that writes data into rows.
func New(rows store.RowStore, data *dataset.Dataset, opts Options) *Orchestrator {
	if opts.Tables == (domain.Tables{}) {
		opts.Tables = domain.DefaultTables()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	return &Orchestrator{
		rows: rows,
		data: data,
		opts: opts,
		log:  loggerOr(opts.Logger),
		rec:  recorderOr(opts.Recorder),
	}
}

// Run executes Ping, Erase, CreateCategories, CreateCustomizations,
// CreateMenuItems and Verify in order. Row failures are recorded in the
// report and never abort the run; only a failed ping or verification read
// returns a *StructuralError.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{}
	o.log.Info("starting seeding process")

	fail := func(stage Stage, err error) (*Report, error) {
		report.Duration = time.Since(start)
		o.rec.ObserveRun(false, report.Duration)
		o.log.Error("seeding failed", "stage", stage, "error", err)
		return report, &StructuralError{Stage: stage, Err: err}
	}

	if p, ok := o.rows.(store.Pinger); ok {
		t := time.Now()
		err := p.Ping(ctx)
		o.rec.ObserveStage(StagePing, time.Since(t))
		if err != nil {
			return fail(StagePing, err)
		}
	}

	t := time.Now()
	report.Erased = o.erase(ctx)
	o.rec.ObserveStage(StageErase, time.Since(t))
	o.log.Info("cleared existing data")

	categories, sr := o.createCategories(ctx)
	report.Stages = append(report.Stages, sr)

	customizations, sr := o.createCustomizations(ctx)
	report.Stages = append(report.Stages, sr)

	menu, sr := o.createMenuItems(ctx, categories, customizations)
	report.Stages = append(report.Stages, sr)

	report.Lookups = Lookups{Categories: categories, Customizations: customizations, Menu: menu}

	t = time.Now()
	total, err := o.verify(ctx)
	o.rec.ObserveStage(StageVerify, time.Since(t))
	if err != nil {
		return fail(StageVerify, err)
	}
	report.MenuTotal = total

	report.Duration = time.Since(start)
	o.rec.ObserveRun(true, report.Duration)
	o.log.Info("seeding complete",
		"created", report.Created(),
		"failed", report.Failed(),
		"erase_failed", len(report.EraseFailures()),
		"menu_total", total,
		"duration", report.Duration,
	)
	return report, nil
}

// erase clears the four tables in order, then the bucket when configured.
func (o *Orchestrator) erase(ctx context.Context) []EraseResult {
	te := &TableEraser{Rows: o.rows, Concurrency: o.opts.Concurrency, Logger: o.log, Recorder: o.rec}
	t := o.opts.Tables

	var out []EraseResult
	for _, table := range []string{t.Categories, t.Customizations, t.Menu, t.MenuCustomizations} {
		out = append(out, te.Erase(ctx, table))
	}

	if o.opts.Blobs != nil && o.opts.Bucket != "" {
		be := &BlobEraser{Blobs: o.opts.Blobs, Concurrency: o.opts.Concurrency, Logger: o.log, Recorder: o.rec}
		out = append(out, be.Erase(ctx, o.opts.Bucket))
	}
	return out
}

// record is implemented by the domain entities submitted as rows.
type record interface {
	Fields() map[string]any
	Validate() error
}

// create validates and submits one row.
func (o *Orchestrator) create(ctx context.Context, table, name string, rec record) RowResult {
	res := RowResult{Op: OpCreate, Table: table, Name: name}
	if err := rec.Validate(); err != nil {
		res.Err = err
	} else if row, err := o.rows.CreateRow(ctx, table, domain.UniqueID, rec.Fields()); err != nil {
		res.Err = err
	} else {
		res.ID = row.ID
	}

	o.rec.ObserveRow(OpCreate, table, res.OK())
	if res.OK() {
		o.log.Debug("created row", "table", table, "name", name, "id", res.ID)
	} else {
		o.log.Warn("failed to create row", "table", table, "name", name, "error", res.Err)
	}
	return res
}

func (o *Orchestrator) createCategories(ctx context.Context) (map[string]string, StageReport) {
	start := time.Now()
	sr := StageReport{Stage: StageCategories}
	ids := make(map[string]string, len(o.data.Categories))

	for _, c := range o.data.Categories {
		res := o.create(ctx, o.opts.Tables.Categories, c.Name, domain.Category{
			Name:        c.Name,
			Description: c.Description,
		})
		sr.Results = append(sr.Results, res)
		if res.OK() {
			ids[c.Name] = res.ID
		}
	}

	return ids, o.finish(sr, start)
}

func (o *Orchestrator) createCustomizations(ctx context.Context) (map[string]string, StageReport) {
	start := time.Now()
	sr := StageReport{Stage: StageCustomizations}
	ids := make(map[string]string, len(o.data.Customizations))

	for _, c := range o.data.Customizations {
		res := o.create(ctx, o.opts.Tables.Customizations, c.Name, domain.Customization{
			Name: c.Name,
			// Dataset prices are already in minor units; the round trip
			// normalizes them without scaling twice.
			Price: money.ToMinorUnits(money.ToMajorUnits(c.Price)),
			Type:  c.Type,
		})
		sr.Results = append(sr.Results, res)
		if res.OK() {
			ids[c.Name] = res.ID
		}
	}

	return ids, o.finish(sr, start)
}

// createMenuItems creates each menu item followed by its join rows. A failed
// item skips its joins; a customization name missing from customizations is
// skipped silently.
func (o *Orchestrator) createMenuItems(ctx context.Context, categories, customizations map[string]string) (map[string]string, StageReport) {
	start := time.Now()
	sr := StageReport{Stage: StageMenuItems}
	ids := make(map[string]string, len(o.data.Menu))

	for _, item := range o.data.Menu {
		category, ok := categories[item.CategoryName]
		if !ok {
			category = domain.UnknownCategory
		}
		rating := domain.ClampRating(item.Rating)

		res := o.create(ctx, o.opts.Tables.Menu, item.Name, domain.MenuItem{
			Name:        item.Name,
			Description: item.Description,
			ImageURL:    item.ImageURL,
			Price:       money.ToMinorUnits(item.Price),
			Rating:      rating,
			Calories:    item.Calories,
			Protein:     item.Protein,
			Category:    category,
		})
		sr.Results = append(sr.Results, res)
		if !res.OK() {
			continue
		}
		ids[item.Name] = res.ID
		o.log.Info("created menu item", "name", item.Name, "rating", rating)

		sr.Results = append(sr.Results, o.createJoins(ctx, item, res.ID, customizations)...)
	}

	return ids, o.finish(sr, start)
}

// createJoins links one menu row to each resolvable customization
// concurrently. Results keep the order of item.Customizations.
func (o *Orchestrator) createJoins(ctx context.Context, item dataset.MenuItem, menuID string, customizations map[string]string) []RowResult {
	type job struct {
		name string
		id   string
	}
	var jobs []job
	for _, name := range item.Customizations {
		if id, ok := customizations[name]; ok {
			jobs = append(jobs, job{name: name, id: id})
		}
	}

	results := make([]RowResult, len(jobs))
	var g errgroup.Group
	g.SetLimit(o.opts.Concurrency)
	for i, j := range jobs {
		g.Go(func() error {
			results[i] = o.create(ctx, o.opts.Tables.MenuCustomizations, item.Name+" / "+j.name, domain.MenuCustomization{
				Menu:          menuID,
				Customization: j.id,
			})
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (o *Orchestrator) finish(sr StageReport, start time.Time) StageReport {
	sr.Duration = time.Since(start)
	o.rec.ObserveStage(sr.Stage, sr.Duration)
	o.log.Info("stage complete", "stage", sr.Stage, "created", sr.Created(), "failed", len(sr.Failures()))
	return sr
}

// verify reads the menu table total.
func (o *Orchestrator) verify(ctx context.Context) (int, error) {
	page, err := o.rows.ListRows(ctx, o.opts.Tables.Menu, domain.ListOpts{Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("verification read of %s: %w", o.opts.Tables.Menu, err)
	}
	if page == nil {
		return 0, errors.New("verification read returned no page")
	}
	o.log.Info("test fetch", "menu_items", page.Total)
	return page.Total, nil
}
