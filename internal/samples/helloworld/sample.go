// Package helloworld builds the sample scene: a physics playground with a
// textured box, falling prims, lights and a material network, written to a
// stage on a hub server or the local filesystem.
package helloworld

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stagelink-labs/stagelink/internal/asset"
	"github.com/stagelink-labs/stagelink/internal/stage"
)

// StageBaseName is the stage file the sample creates, before the
// extension (.stage, or .live when live editing).
const StageBaseName = "helloworld"

// UsersFolder is probed for a username when no destination is given.
const UsersFolder = asset.Scheme + "://localhost/Users"

// Options mirror the sample's command line.
type Options struct {
	// Path is the destination folder. Empty means "derive from the
	// connected username under the localhost Users folder".
	Path string

	// Live selects the .live extension so edits stream to watchers.
	Live bool

	// Existing points at a stage to open instead of creating one.
	Existing string

	// Fail adds a cube without an extent so validation has something
	// to find.
	Fail bool

	// ResourcesDir is the local folder holding Materials/ and Props/
	// to upload next to the stage.
	ResourcesDir string
}

// Result reports what the sample produced, for chaining into the live
// session.
type Result struct {
	StageURL string
	MeshPath string
}

// Sample runs the hello-world scene construction.
type Sample struct {
	client asset.Client
	logger *slog.Logger
	opts   Options
}

// New creates the sample runner.
func New(client asset.Client, logger *slog.Logger, opts Options) (*Sample, error) {
	if client == nil {
		return nil, fmt.Errorf("helloworld: client is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.ResourcesDir == "" {
		opts.ResourcesDir = "resources"
	}
	return &Sample{client: client, logger: logger, opts: opts}, nil
}

// Run executes the sample and returns the stage it created or opened.
func (s *Sample) Run(ctx context.Context) (Result, error) {
	if s.opts.Existing != "" {
		return s.runExisting(ctx)
	}
	return s.runCreate(ctx)
}

func (s *Sample) runCreate(ctx context.Context) (Result, error) {
	destination := s.opts.Path
	if destination == "" {
		username, err := s.connectedUsername(ctx, UsersFolder)
		if err != nil {
			return Result{}, fmt.Errorf("no destination path and no connected user: %w", err)
		}
		destination = asset.JoinURL(UsersFolder, username)
		s.logger.Info("no destination given, using the user folder", "path", destination)
	}
	if !asset.IsHubURL(destination) {
		s.logger.Warn("destination is not a hub URL, treating it as a local path",
			"path", destination)
	}

	ext := ".stage"
	if s.opts.Live {
		ext = ".live"
	}
	stageURL := asset.JoinURL(destination, StageBaseName+ext)

	if err := s.client.Delete(ctx, stageURL); err != nil && !errors.Is(err, asset.ErrNotFound) {
		return Result{}, fmt.Errorf("failed to remove previous stage: %w", err)
	}
	s.logger.Info("creating stage", "url", stageURL)

	st := stage.New()
	st.MetersPerUnit = 0.01
	world, err := st.DefinePrim("/World", stage.TypeXform)
	if err != nil {
		return Result{}, err
	}
	world.SetKind(stage.KindAssembly)
	st.SetDefaultPrim(world)

	if username, err := s.connectedUsername(ctx, stageURL); err == nil {
		s.logger.Info("connected username", "username", username)
	}

	if err := addPhysicsScene(st); err != nil {
		return Result{}, err
	}

	box, err := addBox(st, 0)
	if err != nil {
		return Result{}, err
	}
	if err := s.save(ctx, st, stageURL, "Created a box."); err != nil {
		return Result{}, err
	}

	if err := addDynamicCube(st, 100); err != nil {
		return Result{}, err
	}
	if err := s.save(ctx, st, stageURL, "Created a dynamic cube."); err != nil {
		return Result{}, err
	}

	if s.opts.Fail {
		s.logger.Info("adding a cube with no extents to seed a validation failure")
		if err := addNoBoundsCube(st, 50); err != nil {
			return Result{}, err
		}
		if err := s.save(ctx, st, stageURL, "Created a cube with no extents to fail asset."); err != nil {
			return Result{}, err
		}
	}

	if err := addQuad(st, 500); err != nil {
		return Result{}, err
	}
	if err := s.save(ctx, st, stageURL, "Created a Quad."); err != nil {
		return Result{}, err
	}

	if err := addDistantLight(st); err != nil {
		return Result{}, err
	}
	if err := s.save(ctx, st, stageURL, "Created a DistantLight."); err != nil {
		return Result{}, err
	}

	if err := addDomeLight(st, "./Materials/kloofendal_48d_partly_cloudy.hdr"); err != nil {
		return Result{}, err
	}
	if err := s.save(ctx, st, stageURL, "Created a DomeLight."); err != nil {
		return Result{}, err
	}

	if err := s.uploadResources(ctx, destination); err != nil {
		return Result{}, err
	}

	if err := addMaterial(st, box); err != nil {
		return Result{}, err
	}
	if err := s.save(ctx, st, stageURL, "Added material to box."); err != nil {
		return Result{}, err
	}

	if err := addReferenceAndPayload(st); err != nil {
		return Result{}, err
	}
	if err := s.save(ctx, st, stageURL, "Added Reference, Payload, and modified material"); err != nil {
		return Result{}, err
	}

	if err := s.createEmptyFolder(ctx, asset.JoinURL(destination, "EmptyFolder")); err != nil {
		return Result{}, err
	}

	return Result{StageURL: stageURL, MeshPath: box.Path()}, nil
}

func (s *Sample) runExisting(ctx context.Context) (Result, error) {
	stageURL := s.opts.Existing
	if !asset.IsHubURL(stageURL) {
		s.logger.Warn("stage is not a hub URL, treating it as a local path",
			"url", stageURL)
	}
	s.logger.Info("opening stage", "url", stageURL)

	data, err := s.client.ReadFile(ctx, stageURL)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open stage %s: %w", stageURL, err)
	}
	st, err := stage.Parse(data)
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse stage %s: %w", stageURL, err)
	}

	if s.opts.Fail {
		if err := addNoBoundsCube(st, 50); err != nil {
			return Result{}, err
		}
		if err := s.save(ctx, st, stageURL, "Created a cube with no extents to fail asset."); err != nil {
			return Result{}, err
		}
		return Result{StageURL: stageURL}, nil
	}

	mesh := st.FindFirst(func(p *stage.Prim) bool { return p.Type() == stage.TypeMesh })
	if mesh == nil {
		return Result{}, fmt.Errorf("no mesh found in stage %s", stageURL)
	}
	return Result{StageURL: stageURL, MeshPath: mesh.Path()}, nil
}

// connectedUsername asks the server who we are.
func (s *Sample) connectedUsername(ctx context.Context, url string) (string, error) {
	info, err := s.client.ServerInfo(ctx, url)
	if err != nil {
		return "", err
	}
	if info.Username == "" {
		return "", fmt.Errorf("server at %s reported no username", url)
	}
	return info.Username, nil
}

// uploadResources replaces the Materials and Props folders next to the
// stage with the local sample resources.
func (s *Sample) uploadResources(ctx context.Context, destination string) error {
	for _, folder := range []string{"Materials", "Props"} {
		src := s.opts.ResourcesDir + "/" + folder
		dst := asset.JoinURL(destination, folder)
		if err := s.client.Delete(ctx, dst); err != nil && !errors.Is(err, asset.ErrNotFound) {
			return fmt.Errorf("failed to clear %s: %w", dst, err)
		}
		if err := s.client.Copy(ctx, src, dst); err != nil {
			if errors.Is(err, asset.ErrNotFound) {
				s.logger.Warn("resource folder missing, skipping upload", "path", src)
				continue
			}
			return fmt.Errorf("failed to upload %s: %w", src, err)
		}
		s.logger.Info("uploaded resources", "from", src, "to", dst)
	}
	return nil
}

// createEmptyFolder demonstrates folder creation; an existing folder is
// reported, not fatal.
func (s *Sample) createEmptyFolder(ctx context.Context, url string) error {
	s.logger.Info("creating folder", "url", url)
	if err := s.client.CreateFolder(ctx, url); err != nil {
		if errors.Is(err, asset.ErrAlreadyExists) {
			s.logger.Info("folder already exists", "url", url)
			return nil
		}
		return fmt.Errorf("failed to create folder %s: %w", url, err)
	}
	return nil
}

func (s *Sample) save(ctx context.Context, st *stage.Stage, url, comment string) error {
	data, err := stage.Encode(st)
	if err != nil {
		return err
	}
	if err := s.client.WriteFile(ctx, url, data, comment); err != nil {
		return fmt.Errorf("failed to save %s: %w", url, err)
	}
	return nil
}
