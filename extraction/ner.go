package extraction

import (
	"fmt"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/siherrmann/kgraph/helper"
)

// maxNERWindowChars bounds how much text is fed to the local NER model in
// one call. Token-limited NER models truncate silently past their context
// window, so longer chunk text is split into overlapping windows and the
// results are merged back with chunk-relative offsets (§4.1/C2).
const maxNERWindowChars = 1500

// nerWindowOverlap lets an entity spanning a window boundary still be
// caught whole in the following window.
const nerWindowOverlap = 100

// defaultNERConfidenceThreshold is §4.2's extract(text, threshold?) default:
// mentions scoring below this are dropped before they ever reach the
// pipeline.
const defaultNERConfidenceThreshold = 0.4

// NERMention is one raw entity mention surfaced by the local NER model,
// with offsets relative to the text passed to Extract.
type NERMention struct {
	Text       string
	Label      string
	Start      int
	End        int
	Confidence float64
}

// NERExtractor runs a local token-classification pipeline over text,
// windowing long inputs so the underlying model's context limit is never
// exceeded.
type NERExtractor struct {
	pipeline  *pipelines.TokenClassificationPipeline
	session   hugot.Session
	threshold float64
}

// NewNERExtractor downloads (if needed) and loads modelName as a hugot
// token-classification pipeline. minConfidence <= 0 falls back to
// defaultNERConfidenceThreshold.
func NewNERExtractor(modelName, onnxFilePath string, minConfidence float64) (*NERExtractor, error) {
	if minConfidence <= 0 {
		minConfidence = defaultNERConfidenceThreshold
	}

	modelPath, err := helper.PrepareModel(modelName, onnxFilePath)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("create hugot session: %w", err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "kgraph-ner-pipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	p, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("create ner pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("create ner pipeline: %w", err)
	}

	return &NERExtractor{pipeline: p, session: session, threshold: minConfidence}, nil
}

// Close releases the underlying hugot session.
func (e *NERExtractor) Close() error {
	return e.session.Destroy()
}

// Extract runs NER over text, windowing it if it exceeds maxNERWindowChars,
// and returns mentions with offsets relative to the full input text.
func (e *NERExtractor) Extract(text string) ([]NERMention, error) {
	if len(text) <= maxNERWindowChars {
		return e.extractWindow(text, 0)
	}

	var mentions []NERMention
	seen := make(map[string]bool)

	for start := 0; start < len(text); start += maxNERWindowChars - nerWindowOverlap {
		end := start + maxNERWindowChars
		if end > len(text) {
			end = len(text)
		}

		windowMentions, err := e.extractWindow(text[start:end], start)
		if err != nil {
			return nil, err
		}
		for _, m := range windowMentions {
			key := fmt.Sprintf("%d:%d:%s", m.Start, m.End, m.Label)
			if seen[key] {
				continue
			}
			seen[key] = true
			mentions = append(mentions, m)
		}

		if end == len(text) {
			break
		}
	}

	return mentions, nil
}

func (e *NERExtractor) extractWindow(window string, offset int) ([]NERMention, error) {
	result, err := e.pipeline.RunPipeline([]string{window})
	if err != nil {
		return nil, fmt.Errorf("run ner pipeline: %w", err)
	}
	if len(result.Entities) == 0 {
		return nil, nil
	}

	mentions := make([]NERMention, 0, len(result.Entities[0]))
	for _, entity := range result.Entities[0] {
		text := strings.TrimSpace(entity.Word)
		if !isValidMention(text) {
			continue
		}
		if float64(entity.Score) < e.threshold {
			continue
		}
		mentions = append(mentions, NERMention{
			Text:       text,
			Label:      normalizeLabel(entity.Entity),
			Start:      entity.Start + offset,
			End:        entity.End + offset,
			Confidence: float64(entity.Score),
		})
	}
	return mentions, nil
}

// isValidMention filters tokenization artifacts and degenerate spans.
func isValidMention(text string) bool {
	if len(text) < 2 {
		return false
	}
	if strings.HasPrefix(text, "#") {
		return false
	}
	cleaned := strings.TrimFunc(text, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	})
	return len(cleaned) >= 2
}

// normalizeLabel strips BIO tagging prefixes ("B-"/"I-") from a NER label.
func normalizeLabel(label string) string {
	if strings.HasPrefix(label, "B-") || strings.HasPrefix(label, "I-") {
		return label[2:]
	}
	return label
}
