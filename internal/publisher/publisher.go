// Package publisher mirrors a source tree into a page hierarchy.
package publisher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"codebase-docgen/internal/config"
	"codebase-docgen/internal/errs"
	"codebase-docgen/internal/metrics"
	"codebase-docgen/internal/pagestore"
	"codebase-docgen/internal/summarizer"
	"codebase-docgen/internal/utils"
	"codebase-docgen/pkg/logger"
)

// Report summarizes one run.
type Report struct {
	RunID     string
	Root      string
	Published int
	Failed    int
	Skipped   int
	Duration  time.Duration
}

// Publisher walks the code root and publishes one page per directory and eligible file.
type Publisher struct {
	cfg          config.PublishConfig
	space        string
	rootParentID string
	store        pagestore.PageStore
	summarizer   summarizer.Summarizer
	logger       logger.Logger
	metrics      *metrics.PublishMetrics

	ignore *gitignore.GitIgnore
	report *Report
	// active holds the resolved paths of the directories on the current walk stack.
	active map[string]bool
}

func New(cfg config.Config, store pagestore.PageStore, s summarizer.Summarizer, logger logger.Logger, m *metrics.PublishMetrics) *Publisher {
	if m == nil {
		m = metrics.NewNopPublishMetrics()
	}
	pc := cfg.Publish
	if pc.SummaryWorkers < 1 {
		pc.SummaryWorkers = 1
	}
	return &Publisher{
		cfg:          pc,
		space:        cfg.PageStore.SpaceKey,
		rootParentID: cfg.PageStore.RootParentID,
		store:        store,
		summarizer:   s,
		logger:       logger,
		metrics:      m,
	}
}

// Run publishes the whole tree. It fails only when the root is unusable, the root page
// cannot be written, or ctx is cancelled; subtree failures are logged and counted.
func (p *Publisher) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	root, err := utils.ResolveCodeRoot(p.cfg.Workspace, p.cfg.CodeRootPath)
	if err != nil {
		return nil, err
	}
	if !utils.IsDir(root) {
		return nil, fmt.Errorf("%w: %s", errs.ErrNotADirectory, root)
	}

	p.report = &Report{RunID: utils.NewRunID(), Root: root}
	p.ignore = p.compileIgnore(root)
	p.active = make(map[string]bool)
	p.logger.Info("publish run %s started for %s into space %s", p.report.RunID, root, p.space)

	rootPage, err := p.store.Upsert(ctx, pagestore.UpsertRequest{
		Title:    RootTitle(p.cfg.RootTitle),
		Body:     RootBody(p.cfg.RootTitle, p.cfg.CodeRootPath),
		Space:    p.space,
		ParentID: p.rootParentID,
	})
	if err != nil {
		return p.report, fmt.Errorf("%w: %v", errs.ErrRootPageFailed, err)
	}
	p.report.Published++

	p.walk(ctx, root, "", rootPage.ID)

	p.report.Duration = time.Since(start)
	p.metrics.LastRunSeconds.Set(p.report.Duration.Seconds())
	if err := ctx.Err(); err != nil {
		p.logger.Warn("publish run %s cancelled after %d pages", p.report.RunID, p.report.Published)
		return p.report, err
	}
	p.logger.Info("publish run %s finished in %v: %d published, %d failed, %d skipped",
		p.report.RunID, p.report.Duration, p.report.Published, p.report.Failed, p.report.Skipped)
	return p.report, nil
}

// compileIgnore builds the matcher from the configured patterns, plus the root
// .gitignore when UseGitignore is set. It returns nil when there is nothing to match.
func (p *Publisher) compileIgnore(root string) *gitignore.GitIgnore {
	lines := slices.Clone(p.cfg.IgnorePatterns)
	if p.cfg.UseGitignore {
		lines = append(lines, p.readGitignore(root)...)
	}
	if len(lines) == 0 {
		return nil
	}
	p.logger.Info("applying %d ignore patterns", len(lines))
	return gitignore.CompileIgnoreLines(lines...)
}

func (p *Publisher) readGitignore(root string) []string {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			p.logger.Warn("failed to open .gitignore: %v", err)
		}
		return nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		p.logger.Warn("failed to read .gitignore: %v", err)
	}
	return lines
}

func (p *Publisher) ignored(rel string) bool {
	return p.ignore != nil && p.ignore.MatchesPath(rel)
}

func (p *Publisher) skip(reason, rel string) {
	p.report.Skipped++
	p.metrics.Skipped.WithLabelValues(reason).Inc()
	p.logger.Debug("skipping %s (%s)", rel, reason)
}

// fileJob is an eligible file of the directory being walked.
type fileJob struct {
	rel     string
	content string
	summary string
}

// node is a directory entry with symlinks followed.
type node struct {
	name    string
	rel     string
	full    string
	isDir   bool
	symlink bool
	info    fs.FileInfo
	statErr error
}

func resolveEntries(dir, rel string, entries []os.DirEntry) []node {
	nodes := make([]node, 0, len(entries))
	for _, entry := range entries {
		n := node{
			name:    entry.Name(),
			rel:     path.Join(rel, entry.Name()),
			full:    filepath.Join(dir, entry.Name()),
			isDir:   entry.IsDir(),
			symlink: entry.Type()&fs.ModeSymlink != 0,
		}
		if n.symlink {
			n.info, n.statErr = os.Stat(n.full)
			n.isDir = n.statErr == nil && n.info.IsDir()
		} else {
			n.info, n.statErr = entry.Info()
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// loops reports whether the symlinked directory n resolves to a directory being walked.
func (p *Publisher) loops(n node) bool {
	target, err := filepath.EvalSymlinks(n.full)
	return err == nil && p.active[target]
}

// walk publishes the entries of dir (relative path rel) under parentID in lexicographic order.
func (p *Publisher) walk(ctx context.Context, dir, rel, parentID string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		p.logger.Error("failed to read directory %s: %v", dir, err)
		return
	}
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		p.active[resolved] = true
		defer delete(p.active, resolved)
	}

	nodes := resolveEntries(dir, rel, entries)
	files := p.collectFiles(nodes)
	p.summarize(ctx, files)
	jobs := make(map[string]*fileJob, len(files))
	for _, job := range files {
		jobs[job.rel] = job
	}

	for _, n := range nodes {
		if ctx.Err() != nil {
			return
		}

		if n.isDir {
			if p.ignored(n.rel + "/") {
				p.skip(metrics.SkipIgnored, n.rel)
				continue
			}
			if n.symlink && p.loops(n) {
				p.report.Skipped++
				p.metrics.Skipped.WithLabelValues(metrics.SkipSymlinkLoop).Inc()
				p.logger.Warn("skipping %s: symlink points back to a directory being published", n.rel)
				continue
			}
			page, err := p.store.Upsert(ctx, pagestore.UpsertRequest{
				Title:    DirTitle(p.cfg.RootTitle, n.rel),
				Body:     DirBody(n.name),
				Space:    p.space,
				ParentID: parentID,
			})
			if err != nil {
				p.report.Failed++
				p.metrics.Skipped.WithLabelValues(metrics.SkipParentFail).Inc()
				p.logger.Error("failed to publish directory page for %s, skipping its subtree: %v", n.rel, err)
				continue
			}
			p.report.Published++
			p.walk(ctx, n.full, n.rel, page.ID)
			continue
		}

		job, ok := jobs[n.rel]
		if !ok {
			continue
		}
		if summarizer.IsErrorMarker(job.summary) {
			p.logger.Warn("publishing error placeholder for %s", n.rel)
		}
		if _, err := p.store.Upsert(ctx, pagestore.UpsertRequest{
			Title:    FileTitle(p.cfg.RootTitle, n.rel),
			Body:     job.summary,
			Space:    p.space,
			ParentID: parentID,
		}); err != nil {
			p.report.Failed++
			p.logger.Error("failed to publish page for %s: %v", n.rel, err)
			continue
		}
		p.report.Published++
	}
}

// collectFiles reads every eligible file in nodes, keeping their order.
func (p *Publisher) collectFiles(nodes []node) []*fileJob {
	var jobs []*fileJob
	for _, n := range nodes {
		if n.isDir {
			continue
		}
		if p.ignored(n.rel) {
			p.skip(metrics.SkipIgnored, n.rel)
			continue
		}
		if !p.matchesSuffix(n.name) {
			p.skip(metrics.SkipSuffix, n.rel)
			continue
		}
		if n.statErr != nil {
			p.report.Skipped++
			p.metrics.Skipped.WithLabelValues(metrics.SkipReadError).Inc()
			p.logger.Error("failed to stat %s: %v", n.rel, n.statErr)
			continue
		}
		// sockets, devices and pipes
		if !n.info.Mode().IsRegular() {
			p.skip(metrics.SkipIgnored, n.rel)
			continue
		}
		if limit := int64(p.cfg.MaxFileSizeKB) * 1024; limit > 0 && n.info.Size() > limit {
			p.report.Skipped++
			p.metrics.Skipped.WithLabelValues(metrics.SkipTooLarge).Inc()
			p.logger.Warn("skipping %s: %d bytes exceeds the %d KB limit", n.rel, n.info.Size(), p.cfg.MaxFileSizeKB)
			continue
		}

		data, err := os.ReadFile(n.full)
		if err != nil {
			p.report.Skipped++
			p.metrics.Skipped.WithLabelValues(metrics.SkipReadError).Inc()
			p.logger.Error("failed to read %s: %v", n.rel, err)
			continue
		}
		content := string(data)
		if strings.TrimSpace(content) == "" {
			p.report.Skipped++
			p.metrics.Skipped.WithLabelValues(metrics.SkipEmpty).Inc()
			p.logger.Info("skipping empty file %s", n.rel)
			continue
		}
		jobs = append(jobs, &fileJob{rel: n.rel, content: content})
	}
	return jobs
}

func (p *Publisher) matchesSuffix(name string) bool {
	if len(p.cfg.FileSuffixes) == 0 {
		return true
	}
	for _, suffix := range p.cfg.FileSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// summarize fills job.summary for every job, at most SummaryWorkers at a time.
func (p *Publisher) summarize(ctx context.Context, jobs []*fileJob) {
	g := new(errgroup.Group)
	g.SetLimit(p.cfg.SummaryWorkers)
	for _, job := range jobs {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Debug("summarizing %s", job.rel)
			job.summary = p.summarizer.Summarize(ctx, job.content, job.rel)
			return nil
		})
	}
	_ = g.Wait()
}
