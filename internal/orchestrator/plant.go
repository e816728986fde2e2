package orchestrator

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/glide-cli/grove/internal/compose"
	"github.com/glide-cli/grove/internal/ports"
	"github.com/glide-cli/grove/internal/statestore"
	"github.com/glide-cli/grove/internal/toolcheck"
	"github.com/glide-cli/grove/internal/workspace"
	groveerrors "github.com/glide-cli/grove/pkg/errors"
	"github.com/glide-cli/grove/pkg/progress"
)

// Plant runs the staged transaction described in spec.md §4.1: lock,
// duplicate/disk checks, branch, worktree, seeding, optional compose
// stack, workspace, then an atomic record write. Any failure past the
// lock rolls back every stage already committed, in reverse order.
func (o *Orchestrator) Plant(ctx context.Context, opts PlantOptions) (*statestore.Record, error) {
	if opts.ShareFrom != "" {
		return o.plantTree(ctx, opts)
	}

	// 1. per-task lock
	lock, err := o.locks.AcquireTask(opts.Task)
	if err != nil {
		return nil, groveerrors.NewAlreadyRunning(opts.Task)
	}
	defer lock.Unlock()

	// 2. duplicate check
	if o.store.Exists(opts.Task) {
		return nil, groveerrors.NewAlreadyExists("environment", opts.Task)
	}

	// 3. disk space
	minMB := opts.MinDiskMB
	if minMB == 0 {
		minMB = o.cfg.Local.MinDiskSpaceMB
	}
	if err := checkDiskSpace(o.git.Root, minMB); err != nil {
		return nil, err
	}

	// 4. branch create-or-reuse
	branchCreated := false
	exists, err := o.git.BranchExists(opts.Branch)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := o.git.CreateBranch(opts.Branch); err != nil {
			return nil, err
		}
		branchCreated = true
	} else {
		o.logger.Debug("reusing existing branch", "branch", opts.Branch)
	}
	rollbackBranch := func() {
		if branchCreated {
			_ = o.git.DeleteBranch(opts.Branch)
		}
	}

	// 5. worktree create-or-reuse
	worktreePath := o.worktreePath(opts.Task)
	worktreeCreated := false
	if _, err := os.Stat(worktreePath); err == nil {
		o.logger.Debug("reusing existing worktree", "path", worktreePath)
	} else {
		if err := o.git.CreateWorktree(ctx, worktreePath, opts.Branch); err != nil {
			rollbackBranch()
			return nil, rollbackErr("create worktree", err)
		}
		worktreeCreated = true
	}
	rollbackWorktree := func() {
		if worktreeCreated {
			_ = o.git.RemoveWorktree(ctx, worktreePath)
		}
		rollbackBranch()
	}

	// 6. seed worktree files
	if err := seedWorktree(o.git.Root, worktreePath, func(msg string) {
		o.logger.Warn(msg)
	}); err != nil {
		rollbackWorktree()
		return nil, rollbackErr("seed worktree", err)
	}

	record := &statestore.Record{
		TaskName:     opts.Task,
		Branch:       opts.Branch,
		WorktreePath: worktreePath,
		CreatedAt:    time.Now().UTC(),
	}

	var composeCtx *workspace.ComposeContext

	if opts.EnableCompose {
		if err := o.plantCompose(ctx, opts, worktreePath, record); err != nil {
			rollbackWorktree()
			return nil, err
		}
		composeCtx = &workspace.ComposeContext{ComposeFile: record.ComposeFile, Project: o.composeProject(opts.Task)}
	}

	rollbackCompose := func() {
		if record.ComposeFile != "" {
			o.compose.Down(ctx, record.ComposeFile, o.composeProject(opts.Task))
			_ = o.portReg.Release(opts.Task)
			_ = os.RemoveAll(o.composeDir(opts.Task))
		}
	}

	// 8. workspace build
	tmpl, err := workspace.LoadTemplate(o.stateRoot)
	if err != nil {
		rollbackCompose()
		rollbackWorktree()
		return nil, rollbackErr("load workspace template", err)
	}
	session := o.sessionName(opts.Task)
	if err := o.work.Build(ctx, session, tmpl, worktreePath, composeCtx, opts.InitialCmd); err != nil {
		_ = o.work.Kill(ctx, session)
		rollbackCompose()
		rollbackWorktree()
		return nil, rollbackErr("build workspace", err)
	}
	record.TmuxSession = session

	// 9. atomic record write
	if err := o.store.Save(record); err != nil {
		_ = o.work.Kill(ctx, session)
		rollbackCompose()
		rollbackWorktree()
		return nil, rollbackErr("save record", err)
	}

	return record, nil
}

// plantCompose runs plant's compose sub-stages (7a-7h). On failure it
// returns an error and leaves record untouched; caller handles worktree
// rollback, this function handles its own port/compose rollback.
func (o *Orchestrator) plantCompose(ctx context.Context, opts PlantOptions, worktreePath string, record *statestore.Record) error {
	// 7a. verify docker compose callable
	if err := o.tools.Verify(ctx, toolcheck.ComposeRequirement); err != nil {
		return err
	}

	// 7b. allocate ports
	triple, err := o.portReg.Allocate(opts.Task)
	if err != nil {
		return err
	}
	rollbackPorts := func() { _ = o.portReg.Release(opts.Task) }

	// 7c. verify bindable
	if err := ports.CheckAvailable(triple); err != nil {
		rollbackPorts()
		return err
	}

	// 7d. render + introspect + write
	project := o.composeProject(opts.Task)
	dir := o.composeDir(opts.Task)
	tmpl, err := compose.LoadTemplate(o.stateRoot)
	if err != nil {
		rollbackPorts()
		return err
	}
	rendered := compose.Render(tmpl, compose.RenderVars{
		WorkerName:   opts.Task,
		WorktreePath: worktreePath,
		AppPort:      triple.App,
		DBPort:       triple.DB,
		CachePort:    triple.Cache,
	})

	env := compose.ParseEnv(mustReadFile(worktreePath + "/.env"))
	dockerfileName := compose.ResolveDockerfileName(rendered)
	if dockerfileName == compose.FallbackDockerfileNames[0] {
		for _, name := range compose.FallbackDockerfileNames {
			if _, err := os.Stat(worktreePath + "/" + name); err == nil {
				dockerfileName = name
				break
			}
		}
	}
	dockerfileContent := string(mustReadFile(worktreePath + "/" + dockerfileName))
	introspection := compose.Introspect(rendered, dockerfileContent, env)
	rendered, warnings := compose.ApplyIntrospection(rendered, introspection)
	for _, w := range warnings {
		o.logger.Warn(w)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		rollbackPorts()
		return groveerrors.New(groveerrors.TypeIO, "failed to create compose directory", groveerrors.WithCause(err))
	}
	composeFile := o.composeFile(opts.Task)
	if err := os.WriteFile(composeFile, []byte(rendered), 0o644); err != nil {
		_ = os.RemoveAll(dir)
		rollbackPorts()
		return groveerrors.New(groveerrors.TypeIO, "failed to write compose file", groveerrors.WithCause(err))
	}
	normalizedEnv := compose.NormalizeEnv(mustReadFile(worktreePath + "/.env"))
	envFile := o.composeEnvFile(opts.Task)
	if err := os.WriteFile(envFile, normalizedEnv, 0o644); err != nil {
		_ = os.RemoveAll(dir)
		rollbackPorts()
		return groveerrors.New(groveerrors.TypeIO, "failed to write normalized .env", groveerrors.WithCause(err))
	}
	rollbackFiles := func() {
		_ = os.RemoveAll(dir)
		rollbackPorts()
	}

	// 7e. up -d --build
	if err := o.compose.Up(ctx, composeFile, project, envFile); err != nil {
		rollbackFiles()
		return err
	}
	rollbackUp := func() {
		o.compose.Down(ctx, composeFile, project)
		rollbackFiles()
	}

	// 7f. health wait
	timeout := opts.HealthTimeout
	if timeout == 0 {
		timeout = o.cfg.Local.ComposeHealthTimeoutSecs
	}
	bar := progress.NewBar(0, fmt.Sprintf("%s: waiting for containers", opts.Task))
	if err := o.compose.WaitHealthy(ctx, composeFile, project, time.Duration(timeout)*time.Second, bar); err != nil {
		rollbackUp()
		return err
	}

	// 7g. database initialization (non-fatal)
	o.initDatabase(ctx, opts, composeFile, worktreePath)

	// 7h. post-start hooks (non-fatal)
	hooks := opts.PostStartHooks
	if len(hooks) == 0 {
		hooks = o.cfg.Local.ComposePostStart
	}
	for _, hook := range hooks {
		if _, err := o.compose.Exec(ctx, composeFile, project, "app", hook); err != nil {
			o.logger.Warn("post-start hook failed", "hook", hook, "error", err)
		}
	}

	record.ComposeFile = composeFile
	record.ComposePorts = &triple
	return nil
}

func (o *Orchestrator) initDatabase(ctx context.Context, opts PlantOptions, composeFile, worktreePath string) {
	project := o.composeProject(opts.Task)
	if opts.DBClone {
		source := opts.DBSource
		if source == "" {
			source = o.cfg.Local.ComposeDBSource
		}
		if source == "" {
			source = compose.DetectSource(ctx, o.executor, worktreePath, o.cfg.Project.ProjectName)
			o.logger.Info("auto-detected source database", "source", source)
		}
		if err := compose.Clone(ctx, o.executor, composeFile, project, source, opts.Task); err != nil {
			o.logger.Warn("database clone failed; grove is running but the database may be empty", "error", err,
				"hint", "retry with: grove transplant "+opts.Task)
		}
		return
	}

	if _, err := o.compose.Exec(ctx, composeFile, project, "app", "db:prepare"); err != nil {
		o.logger.Warn("db:prepare failed", "error", err)
		return
	}
	if _, err := o.compose.Exec(ctx, composeFile, project, "app", "db:seed"); err != nil {
		o.logger.Warn("db:seed failed", "error", err)
	}
}

// plantTree plants a "tree": an environment that shares another
// environment's (the "grove") compose stack instead of owning its own,
// per spec.md §4.1's share-compose semantics.
func (o *Orchestrator) plantTree(ctx context.Context, opts PlantOptions) (*statestore.Record, error) {
	lock, err := o.locks.AcquireTask(opts.Task)
	if err != nil {
		return nil, groveerrors.NewAlreadyRunning(opts.Task)
	}
	defer lock.Unlock()

	if o.store.Exists(opts.Task) {
		return nil, groveerrors.NewAlreadyExists("environment", opts.Task)
	}

	grove, err := o.store.Load(opts.ShareFrom)
	if err != nil {
		return nil, groveerrors.NewNotFound("grove", opts.ShareFrom)
	}
	if !grove.IsGrove() {
		return nil, groveerrors.New(groveerrors.TypeInvalidState, fmt.Sprintf("%q has no compose stack to share", opts.ShareFrom))
	}
	if grove.TmuxSession == "" || !o.work.IsAlive(ctx, grove.TmuxSession) {
		return nil, groveerrors.New(groveerrors.TypeInvalidState, fmt.Sprintf("shared grove %q is not running", opts.ShareFrom))
	}

	minMB := opts.MinDiskMB
	if minMB == 0 {
		minMB = o.cfg.Local.MinDiskSpaceMB
	}
	if err := checkDiskSpace(o.git.Root, minMB); err != nil {
		return nil, err
	}

	branchCreated := false
	exists, err := o.git.BranchExists(opts.Branch)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := o.git.CreateBranch(opts.Branch); err != nil {
			return nil, err
		}
		branchCreated = true
	}
	rollbackBranch := func() {
		if branchCreated {
			_ = o.git.DeleteBranch(opts.Branch)
		}
	}

	worktreePath := o.worktreePath(opts.Task)
	worktreeCreated := false
	if _, err := os.Stat(worktreePath); err != nil {
		if err := o.git.CreateWorktree(ctx, worktreePath, opts.Branch); err != nil {
			rollbackBranch()
			return nil, rollbackErr("create worktree", err)
		}
		worktreeCreated = true
	}
	rollbackWorktree := func() {
		if worktreeCreated {
			_ = o.git.RemoveWorktree(ctx, worktreePath)
		}
		rollbackBranch()
	}

	if err := seedWorktree(o.git.Root, worktreePath, func(msg string) { o.logger.Warn(msg) }); err != nil {
		rollbackWorktree()
		return nil, rollbackErr("seed worktree", err)
	}

	sharedPorts := opts.SharedPorts
	if sharedPorts == nil {
		sharedPorts = grove.ComposePorts
	}

	tmpl, err := workspace.LoadTemplate(o.stateRoot)
	if err != nil {
		rollbackWorktree()
		return nil, rollbackErr("load workspace template", err)
	}
	session := o.sessionName(opts.Task)
	// Trees reach the shared stack on the host using its published
	// ports, so no compose context (and no exec prefix) is passed.
	if err := o.work.Build(ctx, session, tmpl, worktreePath, nil, opts.InitialCmd); err != nil {
		_ = o.work.Kill(ctx, session)
		rollbackWorktree()
		return nil, rollbackErr("build workspace", err)
	}

	record := &statestore.Record{
		TaskName:           opts.Task,
		Branch:             opts.Branch,
		WorktreePath:       worktreePath,
		CreatedAt:          time.Now().UTC(),
		TmuxSession:        session,
		SharedGrove:        opts.ShareFrom,
		SharedComposePorts: sharedPorts,
	}

	if err := o.store.Save(record); err != nil {
		_ = o.work.Kill(ctx, session)
		rollbackWorktree()
		return nil, rollbackErr("save record", err)
	}

	return record, nil
}

func mustReadFile(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return data
}
