package hcc

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

var ortInitMu sync.Mutex

// OrtRecognizer runs a token-classification ONNX model and decodes BIO tags
// into entity spans. Results are cached per model and text.
type OrtRecognizer struct {
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
	tk      *tokenizer.Tokenizer
	cfg     NERConfig
	modelID string
	cache   *entityCache
}

// NewOrtRecognizer loads the runtime, tokenizer and model described by cfg.
func NewOrtRecognizer(cfg NERConfig) (*OrtRecognizer, error) {
	if cfg.ModelPath == "" || cfg.TokenizerPath == "" {
		return nil, errors.New("ner: modelPath and tokenizerPath are required")
	}
	if len(cfg.Labels) == 0 {
		return nil, errors.New("ner: labels are required")
	}
	if err := initOrt(cfg.OrtDLL); err != nil {
		return nil, err
	}
	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("ner: load tokenizer: %w", err)
	}
	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask"}, []string{"logits"}, nil)
	if err != nil {
		return nil, fmt.Errorf("ner: create session: %w", err)
	}
	return &OrtRecognizer{
		session: session,
		tk:      tk,
		cfg:     cfg,
		modelID: filepath.Base(cfg.ModelPath),
		cache:   newEntityCache(cfg.CacheSize),
	}, nil
}

func initOrt(dll string) error {
	ortInitMu.Lock()
	defer ortInitMu.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if dll != "" {
		ort.SetSharedLibraryPath(dll)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("ner: init onnxruntime: %w", err)
	}
	return nil
}

// Close releases the ORT session.
func (o *OrtRecognizer) Close() error {
	if o == nil {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != nil {
		err := o.session.Destroy()
		o.session = nil
		return err
	}
	return nil
}

func (o *OrtRecognizer) ModelID() string { return o.modelID }

// Recognize tags entities in text.
func (o *OrtRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	key := cacheKey(text, o.modelID)
	if ents, ok := o.cache.get(key); ok {
		return ents, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	enc, err := o.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("ner: tokenize: %w", err)
	}
	n := len(enc.Ids)
	if limit := o.cfg.MaxSeqLen; limit > 0 && n > limit {
		n = limit
	}
	if n == 0 {
		return nil, nil
	}
	ids := make([]int64, n)
	mask := make([]int64, n)
	for i := 0; i < n; i++ {
		ids[i] = int64(enc.Ids[i])
		mask[i] = 1
		if i < len(enc.AttentionMask) {
			mask[i] = int64(enc.AttentionMask[i])
		}
	}
	logits, err := o.run(ids, mask)
	if err != nil {
		return nil, err
	}
	var special []int
	if len(enc.SpecialTokenMask) >= n {
		special = enc.SpecialTokenMask[:n]
	}
	offsets := enc.Offsets
	if len(offsets) > n {
		offsets = offsets[:n]
	}
	ents := decodeEntities(text, o.cfg.Labels, argmaxRows(logits, n, len(o.cfg.Labels)), offsets, special)
	o.cache.put(key, ents)
	return ents, nil
}

func (o *OrtRecognizer) run(ids, mask []int64) ([]float32, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil, errors.New("ner: recognizer is closed")
	}
	shape := ort.NewShape(1, int64(len(ids)))
	idsT, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, fmt.Errorf("ner: input tensor: %w", err)
	}
	defer idsT.Destroy()
	maskT, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, fmt.Errorf("ner: mask tensor: %w", err)
	}
	defer maskT.Destroy()
	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(ids)), int64(len(o.cfg.Labels))))
	if err != nil {
		return nil, fmt.Errorf("ner: output tensor: %w", err)
	}
	defer out.Destroy()
	if err := o.session.Run([]ort.Value{idsT, maskT}, []ort.Value{out}); err != nil {
		return nil, fmt.Errorf("ner: run: %w", err)
	}
	return append([]float32(nil), out.GetData()...), nil
}

// argmaxRows returns the best column for each of n rows of width k.
func argmaxRows(logits []float32, n, k int) []int {
	out := make([]int, n)
	if k <= 0 {
		return out
	}
	for i := 0; i < n && (i+1)*k <= len(logits); i++ {
		row := logits[i*k : (i+1)*k]
		best := 0
		for j := 1; j < k; j++ {
			if row[j] > row[best] {
				best = j
			}
		}
		out[i] = best
	}
	return out
}

type span struct {
	label      string
	start, end int
}

// decodeEntities merges BIO-tagged tokens into entities. offsets are byte
// ranges into text; special marks tokens to skip.
func decodeEntities(text string, labels []string, predicted []int, offsets [][]int, special []int) []Entity {
	var (
		out []Entity
		cur *span
	)
	flush := func() {
		if cur == nil {
			return
		}
		if cur.start >= 0 && cur.end <= len(text) && cur.start < cur.end {
			surface := strings.TrimSpace(text[cur.start:cur.end])
			if surface != "" && utf8.ValidString(surface) {
				out = append(out, Entity{Text: surface, Label: cur.label})
			}
		}
		cur = nil
	}
	for i, p := range predicted {
		if i >= len(offsets) || len(offsets[i]) < 2 {
			break
		}
		if i < len(special) && special[i] == 1 {
			flush()
			continue
		}
		start, end := offsets[i][0], offsets[i][1]
		if start >= end {
			continue
		}
		tag := "O"
		if p >= 0 && p < len(labels) {
			tag = labels[p]
		}
		prefix, entity := splitTag(tag)
		switch {
		case prefix == "O":
			flush()
		case prefix == "I" && cur != nil && cur.label == entity:
			cur.end = end
		default:
			flush()
			cur = &span{label: entity, start: start, end: end}
		}
	}
	flush()
	return out
}

func splitTag(tag string) (prefix, entity string) {
	tag = strings.TrimSpace(tag)
	if tag == "" || strings.EqualFold(tag, "O") {
		return "O", ""
	}
	if len(tag) > 2 && tag[1] == '-' {
		return strings.ToUpper(tag[:1]), strings.ToUpper(tag[2:])
	}
	return "B", strings.ToUpper(tag)
}
