package openai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/pathakanu/muditam/internal/model"
)

// Client wraps the OpenAI SDK and provides utility helpers.
type Client struct {
	client *openai.Client
	model  openai.ChatModel
}

// ErrClientNotInitialised is returned when attempting to call the API without a configured client.
var ErrClientNotInitialised = errors.New("openai client not initialised")

// New returns a Client. Without apiKey the client only produces local summaries.
func New(apiKey string) *Client {
	if apiKey == "" {
		return &Client{}
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		client: &client,
		model:  openai.ChatModelGPT4oMini,
	}
}

// Enabled reports whether the client can reach the API.
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// SummarizeQuiz describes a quiz in two or three plain sentences for the user.
// Without an API key it returns ErrClientNotInitialised; callers fall back to LocalSummary.
func (c *Client) SummarizeQuiz(ctx context.Context, quiz *model.Quiz) (string, error) {
	if quiz == nil {
		return "", fmt.Errorf("quiz cannot be nil")
	}
	if !c.Enabled() {
		return "", ErrClientNotInitialised
	}

	req := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String("You are a friendly diabetes care coach. Summarise the user's onboarding answers in at most three short sentences. Do not diagnose."),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(quizPrompt(quiz)),
					},
				},
			},
		},
		Temperature:         openai.Float(0.3),
		MaxCompletionTokens: openai.Int(160),
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion received")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// BMI returns weight (kg) over height (cm) squared in metres, or 0 without a height.
func BMI(heightCM, weightKG float64) float64 {
	if heightCM <= 0 || weightKG <= 0 {
		return 0
	}
	m := heightCM / 100
	return weightKG / (m * m)
}

// HbA1cBand names the glycaemic range of an HbA1c percentage.
func HbA1cBand(hba1c float64) string {
	switch {
	case hba1c <= 0:
		return "unknown"
	case hba1c < 5.7:
		return "normal"
	case hba1c < 6.5:
		return "prediabetic"
	default:
		return "diabetic"
	}
}

func bmiBand(bmi float64) string {
	switch {
	case bmi == 0:
		return "unknown"
	case bmi < 18.5:
		return "underweight"
	case bmi < 25:
		return "healthy"
	case bmi < 30:
		return "overweight"
	default:
		return "obese"
	}
}

// LocalSummary builds a summary from the measurements alone.
func LocalSummary(quiz *model.Quiz) string {
	var b strings.Builder
	if bmi := BMI(quiz.Height, quiz.Weight); bmi > 0 {
		fmt.Fprintf(&b, "Your BMI is %.1f (%s).", bmi, bmiBand(bmi))
	} else {
		b.WriteString("Add your height and weight to see your BMI.")
	}
	if band := HbA1cBand(quiz.HbA1c); band != "unknown" {
		fmt.Fprintf(&b, " Your HbA1c of %.1f%% is in the %s range.", quiz.HbA1c, band)
	} else {
		b.WriteString(" Add a recent HbA1c reading to track your sugar control.")
	}
	return b.String()
}

func quizPrompt(quiz *model.Quiz) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Height: %.0f cm\nWeight: %.1f kg\nHbA1c: %.1f%%\n", quiz.Height, quiz.Weight, quiz.HbA1c)

	keys := make([]string, 0, len(quiz.Answers))
	for k := range quiz.Answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %v\n", k, quiz.Answers[k])
	}
	return b.String()
}
