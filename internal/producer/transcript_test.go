package producer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spacesedan/moodflow/internal/mocks"
	"github.com/spacesedan/moodflow/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const transcript = `{"session_id":"s-1","text":"Thanks for having me.","timestamp":0.5}

{"session_id":"s-1","text":"   ","timestamp":2}
{"session_id":"s-1","text":"Um, I guess I led the migration?","timestamp":4.25}
`

func TestReadTranscript(t *testing.T) {
	req := require.New(t)

	requests, err := ReadTranscript(strings.NewReader(transcript), "", true)
	req.NoError(err)
	req.Len(requests, 2)

	req.Equal("Thanks for having me.", requests[0].Text)
	req.Equal(0.5, requests[0].Timestamp)
	req.Equal("s-1", requests[0].SessionID)
	req.True(requests[0].UseLLM)
	req.Equal(UtteranceID("s-1", 0.5, "Thanks for having me."), requests[0].UtteranceID)
	req.Len(requests[0].UtteranceID, 64)
	req.NotEqual(requests[0].UtteranceID, requests[1].UtteranceID)

	overridden, err := ReadTranscript(strings.NewReader(transcript), "s-override", false)
	req.NoError(err)
	req.Equal("s-override", overridden[1].SessionID)
	req.NotEqual(requests[1].UtteranceID, overridden[1].UtteranceID)
}

func TestReadTranscript_BadLine(t *testing.T) {
	_, err := ReadTranscript(strings.NewReader("{\"text\":\"ok\"}\nnot json\n"), "", false)
	require.ErrorContains(t, err, "line 2")
}

func TestTranscriptProducer_Publish(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	requests := []models.UtteranceRequest{
		{UtteranceID: "u1", SessionID: "s-1", Text: "first"},
		{UtteranceID: "u2", SessionID: "s-1", Text: "second"},
	}

	pub := mocks.NewMockPublisher(ctrl)
	gomock.InOrder(
		pub.EXPECT().Publish(gomock.Any(), "utterance-requests", "s-1", requests[0]).Return(nil),
		pub.EXPECT().Publish(gomock.Any(), "utterance-requests", "s-1", requests[1]).Return(errors.New("queue full")),
		pub.EXPECT().Publish(gomock.Any(), "utterance-requests", "s-1", requests[1]).Return(nil),
	)

	p := NewTranscriptProducer(pub, "utterance-requests")
	p.backoff = 0

	n, err := p.Publish(context.Background(), requests)
	req.NoError(err)
	req.Equal(2, n)
}

func TestTranscriptProducer_StopsAfterAttempts(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	pub := mocks.NewMockPublisher(ctrl)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("broker down")).Times(PUBLISH_ATTEMPTS)

	p := NewTranscriptProducer(pub, "utterance-requests")
	p.backoff = 0

	n, err := p.Publish(context.Background(), []models.UtteranceRequest{{UtteranceID: "u1"}, {UtteranceID: "u2"}})
	req.ErrorContains(err, "broker down")
	req.Equal(0, n)
}
