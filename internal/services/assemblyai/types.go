package assemblyai

// Status values reported by the transcript endpoint.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Options selects the analysis features requested with a transcript job.
type Options struct {
	AutoChapters  bool
	IABCategories bool
}

// Transcript is the subset of the transcript resource filmsuite consumes.
type Transcript struct {
	ID         string           `json:"id"`
	Status     string           `json:"status"`
	Error      string           `json:"error"`
	Text       string           `json:"text"`
	Chapters   []Chapter        `json:"chapters"`
	Categories CategoriesResult `json:"iab_categories_result"`
	AudioURL   string           `json:"audio_url"`
}

// Chapter is one auto-chapter. Start and End are milliseconds.
type Chapter struct {
	Start    int64  `json:"start"`
	End      int64  `json:"end"`
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Gist     string `json:"gist"`
}

// CategoriesResult holds topic detection output. Summary maps each IAB
// label to a relevance score in [0,1].
type CategoriesResult struct {
	Status  string             `json:"status"`
	Summary map[string]float64 `json:"summary"`
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL      string `json:"audio_url"`
	AutoChapters  bool   `json:"auto_chapters"`
	IABCategories bool   `json:"iab_categories"`
}

type apiError struct {
	Error string `json:"error"`
}
