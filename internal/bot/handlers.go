package bot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/iconidentify/tubegrab/internal/config"
	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/repository"
	"github.com/iconidentify/tubegrab/internal/worker"
)

// maxCaptionTitle bounds the title portion of the delivery caption.
const maxCaptionTitle = 100

// youtubeHosts are the recognized host substrings for classification.
var youtubeHosts = []string{"youtube.com", "youtu.be", "www.youtube.com", "m.youtube.com"}

// Retriever runs one retrieval attempt for a URL.
type Retriever interface {
	Retrieve(ctx context.Context, url string) domain.Result
}

// messenger is the slice of the Telegram API the handlers use. *tele.Bot
// satisfies it; tests substitute a fake.
type messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Reply(to *tele.Message, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Handlers routes bot commands and freeform text to the retrieval pipeline.
type Handlers struct {
	bot    messenger
	engine Retriever
	repo   repository.DownloadRepository
	pool   *worker.Pool
	policy config.PolicyConfig
	logger *slog.Logger
}

// NewHandlers creates the command and message handlers. The messenger is
// bound later via attach, once the bot itself exists.
func NewHandlers(
	engine Retriever,
	repo repository.DownloadRepository,
	pool *worker.Pool,
	policy config.PolicyConfig,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		engine: engine,
		repo:   repo,
		pool:   pool,
		policy: policy,
		logger: logger,
	}
}

// attach binds the live messenger used for replies, edits and delivery.
func (h *Handlers) attach(m messenger) {
	h.bot = m
}

// Register attaches all handlers to the bot.
func (h *Handlers) Register(b *tele.Bot) {
	b.Handle("/start", h.Start)
	b.Handle("/help", h.Help)
	b.Handle("/stats", h.Stats)
	b.Handle(tele.OnText, h.OnText)
}

// IsSupportedURL reports whether text contains a recognized YouTube host.
func IsSupportedURL(text string) bool {
	lower := strings.ToLower(text)
	for _, host := range youtubeHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}

// Start handles /start.
func (h *Handlers) Start(c tele.Context) error {
	return c.Send(fmt.Sprintf(`🎥 Hi! I download YouTube videos for you.

📺 YouTube only
⏱ Maximum duration: %d minutes
📊 Maximum size: %d MB

Just send me a YouTube link!

Commands:
/start - start
/help - how to use
/stats - your download stats`,
		h.policy.MaxDurationSeconds()/60,
		h.policy.MaxFileSize/(1024*1024),
	))
}

// Help handles /help.
func (h *Handlers) Help(c tele.Context) error {
	return c.Send(fmt.Sprintf(`🔧 How to use:

1. Send a YouTube video link
2. Wait for processing (usually 10-30 seconds)
3. Get the video right in the chat

⚠️ Limits:
• YouTube videos only
• Up to %d minutes long
• File size up to %d MB
• Public videos only

Example links:
• https://www.youtube.com/watch?v=...
• https://youtu.be/...
• https://youtube.com/shorts/...`,
		h.policy.MaxDurationSeconds()/60,
		h.policy.MaxFileSize/(1024*1024),
	))
}

// Stats handles /stats - the user's completed download counts.
func (h *Handlers) Stats(c tele.Context) error {
	stats, err := h.repo.UserStats(context.Background(), c.Sender().ID)
	if err != nil {
		h.logger.Error("failed to load user stats", "user_id", c.Sender().ID, "error", err)
		return c.Send("❌ Could not load your stats, try again later.")
	}

	if len(stats) == 0 {
		return c.Send("You have no downloaded videos yet.")
	}

	total := 0
	for _, s := range stats {
		total += s.Count
	}
	return c.Send(fmt.Sprintf("📊 Your download stats:\n\n📺 YouTube: %d videos", total))
}

// OnText handles freeform text as a candidate video URL. Classification
// happens inline; the blocking retrieval runs on the worker pool so one slow
// download never holds up other users.
func (h *Handlers) OnText(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	if !IsSupportedURL(text) {
		return c.Send(`❌ Unsupported link!

Send a YouTube video link:
• https://www.youtube.com/watch?v=...
• https://youtu.be/...
• https://youtube.com/shorts/...`)
	}

	status, err := h.bot.Reply(c.Message(),
		"⏳ Processing the YouTube video...\nThis can take up to 30 seconds ⏱")
	if err != nil {
		return err
	}

	if err := h.pool.Submit(func() { h.process(c.Sender(), status, userID, text) }); err != nil {
		h.logger.Warn("retrieval queue full", "user_id", userID, "error", err)
		_, editErr := h.bot.Edit(status, "❌ Too many downloads in progress, try again in a minute.")
		return editErr
	}

	return nil
}

// process runs one retrieval attempt end to end on a worker: retrieve,
// deliver or report, record the outcome. It must never panic the worker.
func (h *Handlers) process(to tele.Recipient, status *tele.Message, userID int64, url string) {
	logger := h.logger.With("user_id", userID, "url", url)

	res := h.engine.Retrieve(context.Background(), url)
	if !res.Success {
		logger.Info("retrieval failed", "error", res.Err)
		h.record(userID, url, domain.DownloadFailed)
		h.edit(status, "❌ Error: "+res.Err.Error())
		return
	}

	err := h.deliver(to, res)

	// Delivery done or not, the orchestrator owns the file now.
	if rmErr := os.Remove(res.FilePath); rmErr != nil && !os.IsNotExist(rmErr) {
		logger.Warn("failed to remove delivered file", "path", res.FilePath, "error", rmErr)
	}

	if err != nil {
		logger.Error("video delivery failed", "error", err)
		h.record(userID, url, domain.DownloadFailed)
		h.edit(status, "❌ Something went wrong while sending the video.\nTry again or use another link.")
		return
	}

	logger.Info("video delivered", "title", res.Metadata.Title, "size", res.Metadata.FileSize)
	h.record(userID, url, domain.DownloadCompleted)
	h.edit(status, "✅ Video sent!")
}

// deliver sends the downloaded file with its caption.
func (h *Handlers) deliver(to tele.Recipient, res domain.Result) error {
	video := &tele.Video{
		File:      tele.FromDisk(res.FilePath),
		Caption:   BuildCaption(res.Metadata),
		Streaming: true,
	}
	_, err := h.bot.Send(to, video)
	return err
}

// record appends one download log entry; a sink failure is logged only,
// never surfaced to the user.
func (h *Handlers) record(userID int64, url string, status domain.DownloadStatus) {
	entry := domain.NewDownloadLogEntry(userID, domain.PlatformYouTube, url, status)
	if err := h.repo.Save(context.Background(), entry); err != nil {
		h.logger.Error("failed to record download", "user_id", userID, "error", err)
	}
}

// edit updates the acknowledgment message, logging delivery problems.
func (h *Handlers) edit(status *tele.Message, text string) {
	if _, err := h.bot.Edit(status, text); err != nil {
		h.logger.Warn("failed to edit status message", "error", err)
	}
}

// BuildCaption builds the delivery caption: truncated title, platform, size
// in MB and view count when known.
func BuildCaption(meta domain.VideoMetadata) string {
	var b strings.Builder
	b.WriteString("🎥 " + truncate(meta.Title, maxCaptionTitle))
	b.WriteString("\n📺 YouTube")
	if meta.FileSize > 0 {
		fmt.Fprintf(&b, "\n📊 %d MB", meta.FileSize/(1024*1024))
	}
	if meta.ViewCount > 0 {
		fmt.Fprintf(&b, "\n👀 %s views", formatCount(meta.ViewCount))
	}
	return b.String()
}

// truncate limits s to n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// formatCount renders n with thousands separators: 1234567 -> 1,234,567.
func formatCount(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
