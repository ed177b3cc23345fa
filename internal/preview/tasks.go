package preview

import (
	"context"

	"git.home.luguber.info/inful/specbuilder/internal/taskrunner"
)

// Task names.
const (
	TaskClean   = "clean"
	TaskBuild   = "build"
	TaskWatch   = "watch"
	TaskServe   = "serve"
	TaskStart   = "start"
	TaskDefault = "default"
)

// Runner returns a task runner with the standard task table bound to s.
func (s *Session) Runner() *taskrunner.Runner {
	r := taskrunner.New(taskrunner.WithRecorder(s.recorder))
	parallel := r.Parallel(TaskWatch, TaskServe)
	r.MustRegister(
		taskrunner.Task{Name: TaskClean, Description: "Delete the contents of the output directory", Action: s.Clean},
		taskrunner.Task{Name: TaskBuild, Description: "Render the source document into the output directory", Action: s.Build},
		taskrunner.Task{Name: TaskWatch, Description: "Rebuild whenever a watched source file changes", Action: s.Watch},
		taskrunner.Task{Name: TaskServe, Description: "Serve the output directory with live reload", Action: s.Serve},
		taskrunner.Task{Name: TaskStart, Description: "Build, then watch and serve in parallel", Action: func(ctx context.Context) error {
			return s.Start(ctx, parallel)
		}},
		taskrunner.Task{Name: TaskDefault, Description: "Alias of build", Deps: []string{TaskBuild}},
	)
	return r
}
