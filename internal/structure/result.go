package structure

// Result is the uniform outcome handed to callers across the call boundary:
// either Success with an operation-specific payload, or a failure message.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Code    Kind   `json:"code,omitempty"`

	FinalPath    string `json:"final_path,omitempty"`
	UsedFallback bool   `json:"used_fallback,omitempty"`
	Warning      string `json:"warning,omitempty"`
	ShotPath     string `json:"shot_path,omitempty"`
	Path         string `json:"path,omitempty"`
	ProjectPath  string `json:"project_path,omitempty"`
	Tree         *Node  `json:"tree,omitempty"`
}

// Failure converts err into a failed Result.
func Failure(err error) Result {
	return Result{Success: false, Error: err.Error(), Code: KindOf(err)}
}

// CreateProjectOutcome wraps the return values of Engine.CreateProject.
func CreateProjectOutcome(res CreateProjectResult, err error) Result {
	if err != nil {
		return Failure(err)
	}
	return Result{
		Success:      true,
		FinalPath:    res.FinalPath,
		UsedFallback: res.UsedFallback,
		Warning:      res.Warning,
	}
}

// ShotOutcome wraps the return values of Engine.AddShot.
func ShotOutcome(shotPath string, err error) Result {
	if err != nil {
		return Failure(err)
	}
	return Result{Success: true, ShotPath: shotPath}
}

// PathOutcome wraps the return values of Engine.AddFolder and Engine.RenameFolder.
func PathOutcome(path string, err error) Result {
	if err != nil {
		return Failure(err)
	}
	return Result{Success: true, Path: path}
}

// TreeOutcome wraps the return values of Engine.ReadProjectStructure.
func TreeOutcome(projectPath string, tree *Node, err error) Result {
	if err != nil {
		return Failure(err)
	}
	return Result{Success: true, Tree: tree, ProjectPath: projectPath}
}
