package domain

type RunConfig struct {
	WorkspaceID string
	Lab         *Lab
	Code        string
}

type RunResult struct {
	LabID          string `json:"lab_id"`
	Success        bool   `json:"success"`
	Output         string `json:"output"`
	NewlyCompleted bool   `json:"newly_completed"`
}
