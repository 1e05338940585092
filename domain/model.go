package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

type BuildStage string

const (
	RenderStage    BuildStage = "render"
	NarrateStage   BuildStage = "narrate"
	PairStage      BuildStage = "pair"
	ComposeStage   BuildStage = "compose"
	PublishStage   BuildStage = "publish"
	RecordStage    BuildStage = "record"
	CompletedStage BuildStage = "completed"
	FailedStage    BuildStage = "failed"
)

// Terminal reports whether no further events follow this stage.
func (s BuildStage) Terminal() bool {
	return s == CompletedStage || s == FailedStage
}

// Page is a slide page carrying speaker notes. Number is 1-based.
type Page struct {
	Number int
	Notes  string
}

type PageImage struct {
	Number   int
	FileName string
}

type PageAudio struct {
	Number   int
	FileName string
	Text     string
}

type SlidePair struct {
	Number        int
	ImageFileName string
	AudioFileName string
}

type VideoSegment struct {
	Number   int
	FileName string
	Duration float64
}

type VideoSegmentsAscByNumber []VideoSegment

func (v VideoSegmentsAscByNumber) Len() int           { return len(v) }
func (v VideoSegmentsAscByNumber) Less(i, j int) bool { return v[i].Number < v[j].Number }
func (v VideoSegmentsAscByNumber) Swap(i, j int)      { v[i], v[j] = v[j], v[i] }

type SlidePairsAscByNumber []SlidePair

func (p SlidePairsAscByNumber) Len() int           { return len(p) }
func (p SlidePairsAscByNumber) Less(i, j int) bool { return p[i].Number < p[j].Number }
func (p SlidePairsAscByNumber) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }

// BuildEvent doubles as an SSE event: ID, Event and Data satisfy the
// eventsource.Event interface.
type BuildEvent struct {
	EventID string     `json:"id"`
	BuildID string     `json:"build_id"`
	Stage   BuildStage `json:"stage"`
	Message string     `json:"message"`
	Page    int        `json:"page,omitempty"`
	Time    time.Time  `json:"time"`
}

func (e BuildEvent) Id() string {
	return e.EventID
}

func (e BuildEvent) Event() string {
	return string(e.Stage)
}

func (e BuildEvent) Data() string {
	payload, err := json.Marshal(e)
	if err != nil {
		return strconv.Quote(e.Message)
	}
	return string(payload)
}

type BuildStatus string

const (
	BuildRunning   BuildStatus = "running"
	BuildSucceeded BuildStatus = "succeeded"
	BuildFailed    BuildStatus = "failed"
)

type BuildRecord struct {
	BuildID       string      `json:"build_id"`
	SlidePath     string      `json:"slide_path"`
	VideoLocation string      `json:"video_location,omitempty"`
	Pages         int         `json:"pages"`
	Pairs         int         `json:"pairs"`
	Duration      float64     `json:"duration"`
	Status        BuildStatus `json:"status"`
	Error         string      `json:"error,omitempty"`
	StartedAt     time.Time   `json:"started_at"`
	FinishedAt    time.Time   `json:"finished_at,omitempty"`
}
