package scanning

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// TextractAPI is the subset of the Textract client used here.
type TextractAPI interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
	AnalyzeDocument(ctx context.Context, params *textract.AnalyzeDocumentInput, optFns ...func(*textract.Options)) (*textract.AnalyzeDocumentOutput, error)
}

// TextractConfig configures the Textract reader
type TextractConfig struct {
	Region string
	// Endpoint overrides the service endpoint, e.g. http://localstack:4566
	Endpoint string
	// Forms enables key/value pair detection (AnalyzeDocument FORMS)
	Forms bool
}

// Textract implements TextReader with AWS Textract.
type Textract struct {
	client TextractAPI
	forms  bool
}

// NewTextract loads the default AWS credential chain and builds a client.
func NewTextract(ctx context.Context, cfg TextractConfig) (*Textract, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := textract.NewFromConfig(awsCfg, func(o *textract.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewTextractWithClient(client, cfg.Forms), nil
}

// NewTextractWithClient wraps an existing client
func NewTextractWithClient(client TextractAPI, forms bool) *Textract {
	return &Textract{client: client, forms: forms}
}

// Name identifies the reader
func (t *Textract) Name() string {
	if t.forms {
		return "textract-forms"
	}
	return "textract"
}

// ReadText recognizes each page and joins the LINE blocks.
func (t *Textract) ReadText(ctx context.Context, imageData []byte, contentType string) (*OCRResult, error) {
	pages, err := renderPages(imageData, contentType)
	if err != nil {
		return nil, err
	}

	result := &OCRResult{}
	var lines []string
	for i, page := range pages {
		blocks, err := t.blocks(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		lines = append(lines, blockLines(blocks)...)
		if !t.forms {
			continue
		}

		for k, v := range keyValues(blocks) {
			if result.KeyValues == nil {
				result.KeyValues = make(map[string]string)
			}
			// the first page wins for repeated keys
			if _, ok := result.KeyValues[k]; !ok {
				result.KeyValues[k] = v
			}
		}
	}
	result.Text = strings.Join(lines, "\n")
	return result, nil
}

func (t *Textract) blocks(ctx context.Context, page []byte) ([]types.Block, error) {
	doc := &types.Document{Bytes: page}
	if t.forms {
		out, err := t.client.AnalyzeDocument(ctx, &textract.AnalyzeDocumentInput{
			Document:     doc,
			FeatureTypes: []types.FeatureType{types.FeatureTypeForms},
		})
		if err != nil {
			return nil, fmt.Errorf("analyzing document: %w", err)
		}
		return out.Blocks, nil
	}

	out, err := t.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{Document: doc})
	if err != nil {
		return nil, fmt.Errorf("detecting document text: %w", err)
	}
	return out.Blocks, nil
}

func blockLines(blocks []types.Block) []string {
	var lines []string
	for _, b := range blocks {
		if b.BlockType == types.BlockTypeLine {
			if text := aws.ToString(b.Text); text != "" {
				lines = append(lines, text)
			}
		}
	}
	return lines
}

// keyValues resolves KEY_VALUE_SET blocks into "key text" -> "value text".
func keyValues(blocks []types.Block) map[string]string {
	byID := make(map[string]types.Block, len(blocks))
	for _, b := range blocks {
		byID[aws.ToString(b.Id)] = b
	}

	pairs := make(map[string]string)
	for _, b := range blocks {
		if b.BlockType != types.BlockTypeKeyValueSet || !hasEntity(b, types.EntityTypeKey) {
			continue
		}
		key := strings.TrimSuffix(strings.TrimSpace(childText(b, byID)), ":")
		if key == "" {
			continue
		}
		var values []string
		for _, rel := range b.Relationships {
			if rel.Type != types.RelationshipTypeValue {
				continue
			}
			for _, id := range rel.Ids {
				if v, ok := byID[id]; ok {
					if text := childText(v, byID); text != "" {
						values = append(values, text)
					}
				}
			}
		}
		pairs[key] = strings.Join(values, " ")
	}
	return pairs
}

func childText(b types.Block, byID map[string]types.Block) string {
	var words []string
	for _, rel := range b.Relationships {
		if rel.Type != types.RelationshipTypeChild {
			continue
		}
		for _, id := range rel.Ids {
			child, ok := byID[id]
			if !ok {
				continue
			}
			switch child.BlockType {
			case types.BlockTypeWord:
				words = append(words, aws.ToString(child.Text))
			case types.BlockTypeSelectionElement:
				if child.SelectionStatus == types.SelectionStatusSelected {
					words = append(words, "X")
				}
			}
		}
	}
	return strings.Join(words, " ")
}

func hasEntity(b types.Block, want types.EntityType) bool {
	for _, e := range b.EntityTypes {
		if e == want {
			return true
		}
	}
	return false
}
