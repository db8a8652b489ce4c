package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"parley/pkg/audioconv"
)

const sampleRateHertz = 16000

// GoogleRecognizer calls the Cloud Speech-to-Text synchronous API.
// Authentication runs through Application Default Credentials.
type GoogleRecognizer struct {
	client *speech.Client
}

func NewGoogleRecognizer(ctx context.Context) (*GoogleRecognizer, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	return &GoogleRecognizer{client: client}, nil
}

func (g *GoogleRecognizer) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *GoogleRecognizer) Recognize(ctx context.Context, pcm []float32, locale string) (Result, error) {
	if len(pcm) == 0 {
		return Result{}, ErrNoTranscript
	}
	if locale == "" {
		locale = "en-US"
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: sampleRateHertz,
			LanguageCode:    locale,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{
				Content: audioconv.PCM16Bytes(pcm),
			},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("recognize: %w", err)
	}

	var (
		parts []string
		conf  float32
	)
	for _, res := range resp.Results {
		if len(res.Alternatives) == 0 {
			continue
		}
		alt := res.Alternatives[0]
		if t := strings.TrimSpace(alt.Transcript); t != "" {
			parts = append(parts, t)
			if alt.Confidence > conf {
				conf = alt.Confidence
			}
		}
	}

	if len(parts) == 0 {
		return Result{}, ErrNoTranscript
	}

	return Result{Text: strings.Join(parts, " "), Confidence: conf}, nil
}
