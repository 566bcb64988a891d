package model

import (
	"context"
	"fmt"
	"image"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

// Options configures NewServer.
type Options struct {
	ModelPath    string
	MetadataPath string
	// SharedLibraryPath points at the onnxruntime shared library. Empty uses
	// the platform default lookup.
	SharedLibraryPath string
	// Classes overrides the class sequence from metadata when non-empty.
	Classes []string
}

// Server owns an ONNX Runtime session. It is created once and shared by all
// requests; runs are serialized because the session tensors are reused.
type Server struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	Metadata     Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	logger       *zap.Logger
}

func NewServer(opts Options, logger *zap.Logger) (*Server, error) {
	metadata, err := LoadMetadata(opts.MetadataPath)
	if err != nil {
		return nil, err
	}
	if len(opts.Classes) > 0 {
		metadata.Classes = opts.Classes
	}
	if err := metadata.Validate(metadata.Classes); err != nil {
		return nil, fmt.Errorf("invalid model metadata: %w", err)
	}

	if opts.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(opts.SharedLibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.InputShape...))
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(opts.ModelPath,
		[]string{metadata.InputName}, []string{metadata.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	logger = logger.Named("model")
	logger.Info("model loaded",
		zap.String("path", opts.ModelPath),
		zap.Int("classes", len(metadata.Classes)),
		zap.Int("image_size", metadata.ImageSize),
		zap.String("layout", metadata.Layout))

	return &Server{
		session:      session,
		Metadata:     metadata,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		logger:       logger,
	}, nil
}

// Classes returns the class label sequence indexed by the model output.
func (s *Server) Classes() []string {
	return s.Metadata.Classes
}

// Classify preprocesses img and runs one forward pass.
func (s *Server) Classify(ctx context.Context, img image.Image) (*Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	input := Preprocess(img, s.Metadata.ImageSize, s.Metadata.Layout, s.Metadata.Scale)
	return s.Predict(input)
}

// Predict runs the model on an already packed input tensor.
func (s *Server) Predict(inputData []float32) (*Prediction, error) {
	if expected := s.Metadata.InputSize(); len(inputData) != expected {
		return nil, fmt.Errorf("expected %d input values, got %d", expected, len(inputData))
	}

	s.mu.Lock()
	copy(s.inputTensor.GetData(), inputData)
	if err := s.session.Run(); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	outputData := make([]float32, len(s.outputTensor.GetData()))
	copy(outputData, s.outputTensor.GetData())
	s.mu.Unlock()

	return Top(outputData, s.Metadata.Classes)
}

func (s *Server) Close() {
	if s.inputTensor != nil {
		s.inputTensor.Destroy()
	}
	if s.outputTensor != nil {
		s.outputTensor.Destroy()
	}
	if s.session != nil {
		s.session.Destroy()
	}
	ort.DestroyEnvironment()
}
