package usage

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rohankatakam/scriptusage/internal/models"
)

// Classifier decides whether each script is used
type Classifier struct {
	types   TypeInfoProvider
	logger  logrus.FieldLogger
	workers int
	now     func() time.Time
}

// Option configures a Classifier
type Option func(*Classifier)

// WithLogger sets the logger that receives one entry per script
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// WithWorkers bounds how many scripts are evaluated concurrently
func WithWorkers(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithClock replaces time.Now for run timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) {
		c.now = now
	}
}

// NewClassifier creates a classifier backed by types
func NewClassifier(types TypeInfoProvider, opts ...Option) *Classifier {
	c := &Classifier{
		types:   types,
		logger:  logrus.StandardLogger(),
		workers: 1,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Discover turns script files into entities. Files whose type cannot be
// resolved are skipped without error.
func (c *Classifier) Discover(ctx context.Context, paths []string) ([]models.ScriptEntity, error) {
	entities := make([]models.ScriptEntity, 0, len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t, ok := c.types.ResolveType(path)
		if !ok {
			c.logger.WithField("path", path).Debug("No type resolved for script, skipping")
			continue
		}

		kind := KindOf(c.types, t)
		entities = append(entities, models.ScriptEntity{
			Name:             t.Name,
			Namespace:        t.Namespace,
			Kind:             kind,
			Path:             path,
			HasLifecycleHook: HasLifecycleHook(c.types, t, kind),
		})
	}

	return entities, nil
}

// Evaluate classifies a single entity
func Evaluate(entity models.ScriptEntity, attachments models.Attachments, corpus []models.SourceFile) models.Usage {
	u := models.Usage{
		Entity:     entity,
		AttachedTo: attachments[entity.Name],
		References: FindReferences(entity, corpus),
	}

	hook := entity.Kind == models.KindBehavior && entity.HasLifecycleHook
	if u.IsAttached() || hook || u.IsReferenced() {
		u.Verdict = models.VerdictUsed
	}
	return u
}

// Classify evaluates every entity. Entities are independent, so they are
// evaluated concurrently; the result keeps the input order.
func (c *Classifier) Classify(ctx context.Context, entities []models.ScriptEntity, attachments models.Attachments, corpus []models.SourceFile) (*models.Run, error) {
	run := &models.Run{
		ID:        uuid.New().String(),
		StartedAt: c.now(),
		Usages:    make([]models.Usage, len(entities)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, entity := range entities {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			run.Usages[i] = Evaluate(entity, attachments, corpus)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	collisions := DetectCollisions(entities)
	names := make([]string, 0, len(collisions))
	for name := range collisions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dupes := collisions[name]
		paths := make([]string, len(dupes))
		for j, e := range dupes {
			paths[j] = e.Path
		}
		c.logger.WithFields(logrus.Fields{
			"script": name,
			"paths":  paths,
		}).Warn("Several scripts share a name; attachments and references cannot be told apart")
		run.Warnings = append(run.Warnings, "name collision: "+name)
	}

	for i := range run.Usages {
		u := &run.Usages[i]
		u.Collision = len(collisions[u.Entity.Name]) > 1

		c.logger.WithFields(logrus.Fields{
			"script":      u.Entity.Name,
			"kind":        u.Entity.Kind.String(),
			"attached_to": u.AttachedToField(),
			"status":      u.Verdict.String(),
		}).Info("Script usage")
	}

	return run, nil
}

// DetectCollisions returns the entities that share a name with another
// entity. Names are the only identity key, so such entities share their
// attachments and references.
func DetectCollisions(entities []models.ScriptEntity) map[string][]models.ScriptEntity {
	byName := make(map[string][]models.ScriptEntity)
	for _, e := range entities {
		byName[e.Name] = append(byName[e.Name], e)
	}

	collisions := make(map[string][]models.ScriptEntity)
	for name, group := range byName {
		if len(group) > 1 {
			collisions[name] = group
		}
	}
	return collisions
}
