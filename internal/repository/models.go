// Package repository persists the run history of the pagerank CLI.
package repository

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/pagerank-analysis/pkg/model"
)

// RankRun represents the rank_run table: one row per completed computation.
type RankRun struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunUUID    string    `gorm:"column:run_uuid;type:varchar(64);uniqueIndex"`
	InputFile  string    `gorm:"column:input_file;type:varchar(512)"`
	Nodes      int       `gorm:"column:nodes"`
	DeadEnds   int       `gorm:"column:dead_ends"`
	Edges      int       `gorm:"column:edges"`
	Damping    float64   `gorm:"column:damping"`
	Epsilon    float64   `gorm:"column:epsilon"`
	MaxIter    int       `gorm:"column:max_iter"`
	Workers    int       `gorm:"column:workers"`
	Iterations int       `gorm:"column:iterations"`
	Converged  bool      `gorm:"column:converged"`
	SumRanks   float64   `gorm:"column:sum_ranks"`
	TopK       JSONField `gorm:"column:top_k;type:json"`
	ParseMs    int64     `gorm:"column:parse_ms"`
	ComputeMs  int64     `gorm:"column:compute_ms"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime"`
}

// TableName returns the table name for RankRun.
func (RankRun) TableName() string {
	return "rank_run"
}

// FromResult builds a RankRun row from a computation result.
func FromResult(res *model.Result) (*RankRun, error) {
	topK, err := json.Marshal(res.TopK)
	if err != nil {
		return nil, err
	}

	return &RankRun{
		RunUUID:    res.RunUUID,
		InputFile:  res.InputFile,
		Nodes:      res.Graph.Nodes,
		DeadEnds:   res.Graph.DeadEnds,
		Edges:      res.Graph.Edges,
		Damping:    res.Damping,
		Epsilon:    res.Epsilon,
		MaxIter:    res.MaxIter,
		Workers:    res.Workers,
		Iterations: res.Iterations,
		Converged:  res.Converged,
		SumRanks:   res.SumRanks,
		TopK:       JSONField(topK),
		ParseMs:    res.ParseDuration.Milliseconds(),
		ComputeMs:  res.ComputeDuration.Milliseconds(),
	}, nil
}

// ToResult converts the row back to a model.Result. The full rank vector is
// not stored, so Ranks stays nil.
func (r *RankRun) ToResult() (*model.Result, error) {
	res := &model.Result{
		RunUUID:         r.RunUUID,
		InputFile:       r.InputFile,
		CreatedAt:       r.CreateTime,
		Graph:           model.GraphSummary{Nodes: r.Nodes, DeadEnds: r.DeadEnds, Edges: r.Edges},
		Damping:         r.Damping,
		Epsilon:         r.Epsilon,
		MaxIter:         r.MaxIter,
		Workers:         r.Workers,
		Iterations:      r.Iterations,
		Converged:       r.Converged,
		SumRanks:        r.SumRanks,
		ParseDuration:   time.Duration(r.ParseMs) * time.Millisecond,
		ComputeDuration: time.Duration(r.ComputeMs) * time.Millisecond,
	}

	if r.TopK != nil {
		if err := json.Unmarshal(r.TopK, &res.TopK); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// JSONField stores raw JSON in a database column.
type JSONField []byte

// Value implements driver.Valuer interface.
func (j JSONField) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner interface.
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
		return nil
	case string:
		*j = []byte(v)
		return nil
	default:
		return errors.New("unsupported type for JSONField")
	}
}
