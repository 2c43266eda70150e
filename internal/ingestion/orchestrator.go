package ingestion

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/scriptusage/internal/config"
	"github.com/rohankatakam/scriptusage/internal/errors"
	"github.com/rohankatakam/scriptusage/internal/models"
	"github.com/rohankatakam/scriptusage/internal/output"
	"github.com/rohankatakam/scriptusage/internal/scene"
	"github.com/rohankatakam/scriptusage/internal/storage"
	"github.com/rohankatakam/scriptusage/internal/treesitter"
	"github.com/rohankatakam/scriptusage/internal/usage"
)

// Orchestrator coordinates one classifier run: file discovery, corpus
// loading, type indexing, scene snapshot, classification and export
type Orchestrator struct {
	config *config.Config
	logger *logrus.Logger
	store  storage.Store

	// Scene overrides the provider chosen from configuration
	Scene scene.Provider
	Now   func() time.Time
}

// NewOrchestrator creates a new orchestrator. store may be nil.
func NewOrchestrator(cfg *config.Config, store storage.Store, logger *logrus.Logger) *Orchestrator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Orchestrator{
		config: cfg,
		logger: logger,
		store:  store,
		Now:    time.Now,
	}
}

// RunResult contains the results of a run
type RunResult struct {
	Run         *models.Run
	ScriptCount int
	CorpusCount int
	Duration    time.Duration
}

// Run classifies every script under the target directory
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	startTime := o.Now()
	cfg := o.config
	targetRoot := cfg.Resolve(cfg.TargetDir)

	o.logger.WithFields(logrus.Fields{
		"target": targetRoot,
		"corpus": cfg.CorpusPaths(),
	}).Info("Starting script usage check")

	policy, err := ParseReadErrorPolicy(cfg.Scan.OnReadError)
	if err != nil {
		return nil, err
	}

	// Phase 1: Discover files
	scripts, err := WalkSourceFiles(targetRoot, cfg.Extension)
	if err != nil {
		return nil, err
	}

	corpusPaths, missing, err := WalkCorpus(cfg.CorpusPaths(), cfg.Extension)
	if err != nil {
		return nil, err
	}

	var warnings []string
	for _, dir := range missing {
		o.logger.WithField("dir", dir).Warn("Corpus directory not found")
		warnings = append(warnings, fmt.Sprintf("corpus directory not found: %s", dir))
	}

	// Phase 2: Load every file once
	loaded, err := LoadCorpus(ctx, unionPaths(scripts, corpusPaths), policy, cfg.Scan.Workers, o.logger)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, loaded.Warnings...)

	inCorpus := make(map[string]bool, len(corpusPaths))
	for _, p := range corpusPaths {
		inCorpus[p] = true
	}
	corpus := make([]models.SourceFile, 0, len(corpusPaths))
	for _, f := range loaded.Files {
		if inCorpus[filepath.Clean(f.Path)] {
			corpus = append(corpus, f)
		}
	}

	// Phase 3: Index type declarations
	index, err := treesitter.BuildIndex(ctx, loaded.Files, treesitter.IndexOptions{
		BehaviorBases:  cfg.Kinds.BehaviorBases,
		DataAssetBases: cfg.Kinds.DataAssetBases,
		Workers:        cfg.Scan.Workers,
		Logger:         o.logger,
	})
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, index.Warnings...)

	// Phase 4: Scene snapshot
	provider := o.Scene
	if provider == nil {
		provider = o.sceneProvider(corpusPaths, scripts)
	}
	instances, err := provider.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	attachments := scene.BuildAttachments(instances)

	// Phase 5: Classify
	classifier := usage.NewClassifier(index,
		usage.WithLogger(o.logger),
		usage.WithWorkers(cfg.Scan.Workers),
		usage.WithClock(o.Now),
	)

	entities, err := classifier.Discover(ctx, scripts)
	if err != nil {
		return nil, err
	}

	run, err := classifier.Classify(ctx, entities, attachments, corpus)
	if err != nil {
		return nil, err
	}
	run.TargetRoot = targetRoot
	run.Warnings = append(warnings, run.Warnings...)

	// Phase 6: Export
	if cfg.Report.Export {
		path, err := output.WriteReport(run, output.ReportOptions{
			Dir:         cfg.Resolve(cfg.Report.OutputDir),
			BaseName:    cfg.Report.BaseName,
			Mode:        output.ReportMode(cfg.Report.Mode),
			Timestamped: cfg.Report.Timestamped,
			Now:         o.Now,
		})
		if err != nil {
			return nil, err
		}
		run.ReportPath = path
		o.logger.WithField("path", path).Info("Report written")
	}

	if o.store != nil {
		if err := o.store.SaveRun(ctx, run); err != nil {
			serr := errors.StorageError(err, "failed to save run")
			if errors.IsFatal(serr) {
				return nil, serr
			}
			o.logger.WithError(err).WithField("run_id", run.ID).Warn("Run not stored in report database")
			run.Warnings = append(run.Warnings, serr.Error())
		}
	}

	result := &RunResult{
		Run:         run,
		ScriptCount: len(run.Usages),
		CorpusCount: len(corpus),
		Duration:    o.Now().Sub(startTime),
	}

	used, unused := run.Counts()
	o.logger.WithFields(logrus.Fields{
		"duration": result.Duration.String(),
		"scripts":  result.ScriptCount,
		"corpus":   result.CorpusCount,
		"types":    index.Len(),
		"used":     used,
		"unused":   unused,
		"warnings": len(run.Warnings),
	}).Info("Script usage check completed")

	return result, nil
}

// sceneProvider picks the snapshot source from configuration
func (o *Orchestrator) sceneProvider(corpusPaths, scripts []string) scene.Provider {
	cfg := o.config

	switch {
	case cfg.Scene.UnityScene != "":
		guids := scene.LoadScriptGUIDs(unionPaths(scripts, corpusPaths), o.logger)
		return scene.NewUnityProvider(cfg.Resolve(cfg.Scene.UnityScene), guids, o.logger)
	case cfg.Scene.Snapshot != "":
		return scene.NewFileProvider(cfg.Resolve(cfg.Scene.Snapshot))
	default:
		o.logger.Debug("No scene configured, nothing is attached")
		return scene.EmptyProvider{}
	}
}

// unionPaths returns a followed by the entries of b not already in a
func unionPaths(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, p := range list {
			p = filepath.Clean(p)
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}
