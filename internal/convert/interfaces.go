package convert

import (
	"github.com/ytget/videocatcher/internal/model"
)

// Converter defines the interface for the MP4 conversion service.
type Converter interface {
	// StartConversion starts converting a downloaded file to MP4 in the
	// background and returns the tracking task.
	StartConversion(inputPath string) (*model.ConversionTask, error)

	// StopConversion requests cancellation of an active conversion; the
	// partial output file is removed.
	StopConversion(taskID string) error

	// GetTask and GetAllTasks return copies; live tasks are mutated by the
	// background conversion goroutine.
	GetTask(taskID string) (*model.ConversionTask, bool)
	GetAllTasks() []*model.ConversionTask
}
