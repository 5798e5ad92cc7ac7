package patchcore

import (
	"fmt"

	"github.com/DanielGr12/ai-code-integrator/git_tools"
)

// VCSStatus is a best-effort snapshot of the working tree's VCS state,
// degrading to IsRepo=false on any failure rather than erroring. Grounded
// on git_tools.Status / original_source/app.py's vcs_status() route.
type VCSStatus struct {
	IsRepo     bool
	IsDirty    bool
	DirtyPaths []string
}

// VCSStatus reports the working tree's git state, never failing: a repo
// that isn't a git checkout, or a git binary that isn't on PATH, both
// just report IsRepo=false.
func (e *Engine) VCSStatus() VCSStatus {
	st := git_tools.IsRepoStatus(e.ctx, e.root)
	return VCSStatus{
		IsRepo:     st.IsRepo,
		IsDirty:    st.IsDirty,
		DirtyPaths: st.DirtyPaths,
	}
}

// autoStage stages the given repo-relative paths after a successful
// Apply, when the working directory is a git repository. A staging
// failure is logged but never returned as text: the patch itself
// already committed to disk, and a stage failure shouldn't unwind it or
// leak into the apply's success message, exactly as the original
// returns git_msg = "" on staging failure.
func (e *Engine) autoStage(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	st := git_tools.IsRepoStatus(e.ctx, e.root)
	if !st.IsRepo {
		return ""
	}
	if err := git_tools.StageFiles(e.ctx, e.root, paths); err != nil {
		e.logger().WarnContext(e.ctx, "auto_stage_failed", "error", err)
		return ""
	}
	return fmt.Sprintf("(staged %d file(s) in git)", len(paths))
}
