// Package sheet keeps a grid and its delimited-text form in sync.
//
// A Sheet is created from source text, mutated through structural edits or
// direct cell writes, and reports the freshly serialized text once after
// every completed mutation. Reads never notify.
//
// A Sheet is not safe for concurrent use. Calls are expected to arrive one
// at a time from the caller's event loop, and an OnChange callback must not
// mutate the sheet that invoked it; doing so is undefined behaviour.
package sheet

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/zjrosen/csvedit/internal/cachemanager"
	"github.com/zjrosen/csvedit/internal/delimited"
	"github.com/zjrosen/csvedit/internal/grid"
	"github.com/zjrosen/csvedit/internal/log"
	"github.com/zjrosen/csvedit/internal/pubsub"
)

// Option customizes a Sheet.
type Option func(*Sheet)

// WithConfig sets the codec configuration. Invalid values make New fail.
func WithConfig(cfg Config) Option {
	return func(s *Sheet) { s.cfg = cfg }
}

// WithCodec replaces the built-in delimited.Standard codec.
func WithCodec(codec delimited.Codec) Option {
	return func(s *Sheet) { s.codec = codec }
}

// WithOnChange registers the change callback.
func WithOnChange(fn func(text string)) Option {
	return func(s *Sheet) { s.onChange = fn }
}

// WithPublisher also publishes every change to p.
func WithPublisher(p pubsub.Publisher[string]) Option {
	return func(s *Sheet) { s.publisher = p }
}

// WithTextCache memoizes Text() per revision in cache. Sheets may share one cache.
func WithTextCache(cache cachemanager.CacheManager[string]) Option {
	return func(s *Sheet) { s.cache = cache }
}

// Sheet is the grid handle handed to the presentation layer.
type Sheet struct {
	id        string
	cfg       Config
	opts      delimited.Options
	codec     delimited.Codec
	grid      *grid.Grid
	meta      delimited.Meta
	diags     []delimited.Diagnostic
	revision  uint64
	onChange  func(string)
	publisher pubsub.Publisher[string]
	cache     cachemanager.CacheManager[string]
	text      *cachemanager.ReadThroughCache[string, struct{}]
}

// New parses source and returns a ready sheet. Configuration errors are
// returned before anything is parsed; malformed text never fails.
func New(source string, opts ...Option) (*Sheet, error) {
	s := &Sheet{
		id:    uuid.NewString(),
		cfg:   DefaultConfig(),
		codec: delimited.Standard{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.codec == nil {
		return nil, fmt.Errorf("%w: nil codec", ErrInvalidConfig)
	}

	codecOpts, err := s.cfg.Options()
	if err != nil {
		return nil, err
	}
	s.opts = codecOpts
	s.text = cachemanager.NewReadThroughCache[string, struct{}](s.cache, func(context.Context, struct{}) (string, error) {
		return s.codec.Serialize(s.grid.ToRows(), s.meta), nil
	})

	s.load(source)
	return s, nil
}

// ID identifies the sheet for the lifetime of the process.
func (s *Sheet) ID() string {
	return s.id
}

// Text returns the current serialized state.
func (s *Sheet) Text() string {
	text, _ := s.text.Get(context.Background(), s.cacheKey(), struct{}{}, cachemanager.DefaultExpiration)
	return text
}

// Meta returns the serialization conventions in effect.
func (s *Sheet) Meta() delimited.Meta {
	return s.meta
}

// Diagnostics returns the non-fatal problems found by the most recent parse.
func (s *Sheet) Diagnostics() []delimited.Diagnostic {
	return append([]delimited.Diagnostic(nil), s.diags...)
}

// Rows returns the row count.
func (s *Sheet) Rows() int {
	return s.grid.Rows()
}

// Cols returns the column count.
func (s *Sheet) Cols() int {
	return s.grid.Cols()
}

// Cell reads one cell. Out-of-range addresses return grid.ErrOutOfRange.
func (s *Sheet) Cell(row, col int) (string, error) {
	return s.grid.Cell(row, col)
}

// Snapshot returns a copy of every cell.
func (s *Sheet) Snapshot() [][]string {
	return s.grid.ToRows()
}

// SetCell writes one cell and notifies. Out-of-range addresses return
// grid.ErrOutOfRange and leave the sheet untouched.
func (s *Sheet) SetCell(row, col int, value string) error {
	if err := s.grid.SetCell(row, col, value); err != nil {
		return err
	}
	s.changed(pubsub.ChangedEvent)
	return nil
}

// SetText replaces the grid and metadata by parsing text.
func (s *Sheet) SetText(text string) {
	s.load(text)
	s.changed(pubsub.ChangedEvent)
}

// Reload is SetText for text that came from outside the editor, such as the
// file on disk. Subscribers see a ReloadedEvent instead of a ChangedEvent.
func (s *Sheet) Reload(text string) {
	s.load(text)
	s.changed(pubsub.ReloadedEvent)
}

// ClearAll resets to a single empty cell, exactly as parsing "" would.
func (s *Sheet) ClearAll() {
	s.SetText("")
}

// AddRowBefore inserts an empty row at rowIndex and returns where it landed.
func (s *Sheet) AddRowBefore(rowIndex int) int {
	return s.insertRow(rowIndex)
}

// AddRowAfter inserts an empty row at rowIndex+1 and returns where it landed.
func (s *Sheet) AddRowAfter(rowIndex int) int {
	return s.insertRow(rowIndex + 1)
}

// AddColumnBefore inserts an empty column at colIndex and returns where it landed.
func (s *Sheet) AddColumnBefore(colIndex int) int {
	return s.insertColumn(colIndex)
}

// AddColumnAfter inserts an empty column at colIndex+1 and returns where it landed.
func (s *Sheet) AddColumnAfter(colIndex int) int {
	return s.insertColumn(colIndex + 1)
}

// DeleteRow removes a row. With a single row left it does nothing, does not
// notify, and returns false.
func (s *Sheet) DeleteRow(rowIndex int) bool {
	if !s.grid.DeleteRow(rowIndex) {
		log.Debug(log.CatSheet, "delete row refused", "sheet", s.id, "rows", s.grid.Rows())
		return false
	}
	s.changed(pubsub.ChangedEvent)
	return true
}

// DeleteColumn removes a column. With a single column left it does nothing,
// does not notify, and returns false.
func (s *Sheet) DeleteColumn(colIndex int) bool {
	if !s.grid.DeleteColumn(colIndex) {
		log.Debug(log.CatSheet, "delete column refused", "sheet", s.id, "cols", s.grid.Cols())
		return false
	}
	s.changed(pubsub.ChangedEvent)
	return true
}

func (s *Sheet) insertRow(index int) int {
	at := s.grid.InsertRow(index)
	s.changed(pubsub.ChangedEvent)
	return at
}

func (s *Sheet) insertColumn(index int) int {
	at := s.grid.InsertColumn(index)
	s.changed(pubsub.ChangedEvent)
	return at
}

// load parses text into fresh grid and metadata. It does not notify.
func (s *Sheet) load(text string) {
	res := s.codec.Parse(text, s.opts)
	for _, d := range res.Diagnostics {
		if d.Code == delimited.UndetectableDelimiter {
			log.Debug(log.CatCodec, "delimiter not detected, using default", "sheet", s.id, "delimiter", string(res.Meta.Delimiter))
			continue
		}
		log.Warn(log.CatCodec, "parse diagnostic", "sheet", s.id, "code", d.Code, "row", d.Row, "message", d.Message)
	}

	s.grid = grid.New(res.Rows)
	s.meta = res.Meta
	s.diags = res.Diagnostics
}

// changed advances the revision and delivers the new text once.
func (s *Sheet) changed(eventType pubsub.EventType) {
	s.text.Forget(context.Background(), s.cacheKey())
	s.revision++

	text := s.Text()
	log.Debug(log.CatSheet, "sheet changed", "sheet", s.id, "event", eventType,
		"rows", s.grid.Rows(), "cols", s.grid.Cols(), "revision", s.revision)

	if s.onChange != nil {
		s.onChange(text)
	}
	if s.publisher != nil {
		s.publisher.Publish(eventType, text)
	}
}

func (s *Sheet) cacheKey() string {
	return s.id + ":" + strconv.FormatUint(s.revision, 10)
}
