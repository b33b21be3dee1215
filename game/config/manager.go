package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/snakes-ladders/game/board"
	"github.com/wricardo/snakes-ladders/game/service"
)

var (
	ErrBoardNotFound    = service.ErrBoardNotFound
	ErrInvalidBoardName = errors.New("invalid board name")
	ErrReadOnly         = errors.New("no boards directory configured")
	ErrBuiltinBoard     = errors.New("built-in boards cannot be overwritten")
)

// extensions are tried in order when resolving a board name to a file
var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles board loading and caching. Built-in boards are always
// available; custom boards are read from boardsDir when one is configured.
type Manager struct {
	boardsDir    string
	defaultBoard *board.Board
	boards       map[string]*board.Board
	mu           sync.RWMutex
	log          *logrus.Entry
}

// NewManager creates a new board manager. An empty boardsDir serves the
// built-in boards only.
func NewManager(boardsDir string) (*Manager, error) {
	if boardsDir != "" {
		info, err := os.Stat(boardsDir)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("boards directory does not exist: %s", boardsDir)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat boards directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("boards path is not a directory: %s", boardsDir)
		}
	}

	def, _ := board.Default(board.DefaultSize)
	return &Manager{
		boardsDir:    boardsDir,
		defaultBoard: def,
		boards:       make(map[string]*board.Board),
		log:          logrus.WithField("component", "boards"),
	}, nil
}

// LoadBoard loads a board by name. Callers receive a copy.
func (m *Manager) LoadBoard(name string) (*board.Board, error) {
	name = strings.TrimSpace(name)
	if b := builtin(name); b != nil {
		return b, nil
	}
	if err := checkName(name); err != nil {
		return nil, err
	}
	id := boardID(name)

	m.mu.RLock()
	// Check cache first
	if b, exists := m.boards[id]; exists {
		m.mu.RUnlock()
		return b.Clone(), nil
	}
	m.mu.RUnlock()

	if m.boardsDir == "" {
		return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if b, exists := m.boards[id]; exists {
		return b.Clone(), nil
	}

	path, err := m.resolve(name)
	if err != nil {
		return nil, err
	}

	b, err := readBoard(path)
	if err != nil {
		return nil, err
	}
	if b.Name == "" {
		b.Name = id
	}

	m.boards[id] = b
	return b.Clone(), nil
}

// ListBoards returns the built-in boards followed by every valid board file
func (m *Manager) ListBoards() ([]*service.BoardInfo, error) {
	var infos []*service.BoardInfo
	for _, b := range board.Builtins() {
		info := describe(b, b.Name)
		info.Builtin = true
		infos = append(infos, info)
	}

	if m.boardsDir == "" {
		return infos, nil
	}

	entries, err := os.ReadDir(m.boardsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read boards directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !hasBoardExtension(entry.Name()) {
			continue
		}

		id := boardID(entry.Name())
		b, err := m.LoadBoard(entry.Name())
		if err != nil {
			// Skip invalid boards
			m.log.WithError(err).WithField("file", entry.Name()).Warn("Skipping board file")
			continue
		}

		info := describe(b, id)
		info.Filename = entry.Name()
		infos = append(infos, info)
	}

	return infos, nil
}

// GetDefault returns the board new sessions use when none is named
func (m *Manager) GetDefault() *board.Board {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultBoard.Clone()
}

// SetDefault sets the default board by name
func (m *Manager) SetDefault(name string) error {
	b, err := m.LoadBoard(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultBoard = b
	return nil
}

// RefreshCache drops every cached board so the next load rereads the disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boards = make(map[string]*board.Board)
}

// SaveBoard validates b and writes it to the boards directory. A name with
// a .yaml or .yml suffix is written as YAML, anything else as JSON.
func (m *Manager) SaveBoard(name string, b *board.Board) error {
	name = strings.TrimSpace(name)
	if m.boardsDir == "" {
		return ErrReadOnly
	}
	if builtin(name) != nil {
		return fmt.Errorf("%w: %s", ErrBuiltinBoard, name)
	}
	if err := checkName(name); err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("%w: board cannot be nil", board.ErrInvalidBoard)
	}
	if err := b.Validate(); err != nil {
		return err
	}

	id := boardID(name)
	saved := b.Clone()
	if saved.Name == "" {
		saved.Name = id
	}

	filename := name
	if !hasBoardExtension(filename) {
		filename = name + ".json"
	}

	var (
		data []byte
		err  error
	)
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(saved)
	default:
		data, err = json.MarshalIndent(saved, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal board: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.boardsDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write board file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.boards[id] = saved
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"board": id, "file": filename}).Info("Board saved")
	return nil
}

// resolve finds the file backing name
func (m *Manager) resolve(name string) (string, error) {
	if hasBoardExtension(name) {
		path := filepath.Join(m.boardsDir, name)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", ErrBoardNotFound, name)
		}
		return path, nil
	}

	for _, ext := range extensions {
		path := filepath.Join(m.boardsDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrBoardNotFound, name)
}

// readBoard parses and validates a board file
func readBoard(path string) (*board.Board, error) {
	b, err := DecodeBoard(path)
	if err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return b, nil
}

// DecodeBoard parses a JSON or YAML board file without validating it
func DecodeBoard(path string) (*board.Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read board file: %w", err)
	}

	var b board.Board
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &b)
	default:
		err = json.Unmarshal(data, &b)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", board.ErrInvalidBoard, filepath.Base(path), err)
	}

	return &b, nil
}

func builtin(name string) *board.Board {
	for _, b := range board.Builtins() {
		if strings.EqualFold(b.Name, name) {
			return b
		}
	}
	return nil
}

func describe(b *board.Board, id string) *service.BoardInfo {
	return &service.BoardInfo{
		BoardID:     id,
		Name:        b.Name,
		Description: b.Description,
		Size:        b.Size,
		Snakes:      len(b.Snakes),
		Ladders:     len(b.Ladders),
	}
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidBoardName, name)
	}
	return nil
}

func hasBoardExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// boardID strips a known extension from a file or board name
func boardID(name string) string {
	if hasBoardExtension(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
