package config

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"westport-blog/internal/domain"
)

// AppConfig описывает конфигурацию всех процессов блога.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	TZ     string `envconfig:"TZ" default:"America/Chicago"`
	Port   int    `envconfig:"PORT" default:"8080"`
	DryRun bool   `envconfig:"DRY_RUN"`

	SiteBase       string `envconfig:"SITE_BASE"`
	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL"`

	Paths struct {
		Root        string `envconfig:"SITE_ROOT" default:"."`
		PostsDir    string `envconfig:"POSTS_DIR" default:"posts"`
		HTMLDir     string `envconfig:"HTML_DIR" default:"posts/html"`
		Listing     string `envconfig:"LISTING_PATH" default:"posts/index.json"`
		Topics      string `envconfig:"TOPICS_PATH" default:"posts/topics.json"`
		State       string `envconfig:"STATE_PATH" default:"posts/.topic_state.json"`
		Feed        string `envconfig:"FEED_PATH"`
		ArtifactExt string `envconfig:"ARTIFACT_EXT" default:".html"`
	} `envconfig:""`

	OpenAI struct {
		APIKey  string        `envconfig:"OPENAI_API_KEY"`
		Model   string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
		BaseURL string        `envconfig:"OPENAI_BASE_URL"`
		Timeout time.Duration `envconfig:"OPENAI_TIMEOUT" default:"90s"`
	} `envconfig:""`

	Article struct {
		MinWords int    `envconfig:"ARTICLE_MIN_WORDS" default:"600"`
		MaxWords int    `envconfig:"ARTICLE_MAX_WORDS" default:"800"`
		Tone     string `envconfig:"ARTICLE_TONE" default:"friendly, helpful and persuasive"`
	} `envconfig:""`

	Retention struct {
		CutoffDays int `envconfig:"CUTOFF_DAYS" default:"60"`
		KeepMin    int `envconfig:"KEEP_MIN" default:"20"`
	} `envconfig:""`

	Subscribers struct {
		Backend         string `envconfig:"SUBSCRIBER_BACKEND" default:"http"`
		URL             string `envconfig:"SUBSCRIBERS_URL"`
		UnsubscribesURL string `envconfig:"UNSUBSCRIBES_URL"`
		Token           string `envconfig:"SUBSCRIBERS_TOKEN"`
		Secret          string `envconfig:"UNSUBSCRIBE_SECRET"`
		UnsubscribePage string `envconfig:"UNSUBSCRIBE_PAGE" default:"unsubscribe.html"`
	} `envconfig:""`

	PGDSN     string `envconfig:"PG_DSN"`
	RedisAddr string `envconfig:"REDIS_ADDR"`

	SMTP struct {
		Host         string        `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
		Port         int           `envconfig:"SMTP_PORT" default:"587"`
		User         string        `envconfig:"GMAIL_USER"`
		Password     string        `envconfig:"GMAIL_APP_PASSWORD"`
		FromName     string        `envconfig:"SMTP_FROM_NAME" default:"Discount Smokes"`
		SendInterval time.Duration `envconfig:"SEND_INTERVAL" default:"1s"`
		LedgerTTL    time.Duration `envconfig:"NOTIFY_LEDGER_TTL" default:"720h"`
	} `envconfig:""`

	Store struct {
		Name      string `envconfig:"STORE_NAME" default:"Discount Smokes"`
		Address   string `envconfig:"STORE_ADDRESS" default:"1130 Westport Rd, Kansas City, MO 64111"`
		Phone     string `envconfig:"STORE_PHONE" default:"(816) 712-1130"`
		PhoneLink string `envconfig:"STORE_PHONE_LINK" default:"+18167121130"`
		MapsURL   string `envconfig:"STORE_MAPS_URL" default:"https://www.google.com/maps?q=1130+Westport+Rd,+Kansas+City,+MO+64111"`
	} `envconfig:""`

	Telegram struct {
		Token     string `envconfig:"TG_BOT_TOKEN"`
		ChannelID int64  `envconfig:"TG_CHANNEL_ID"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// Parse читает окружение и возвращает ошибку вместо завершения процесса.
func Parse() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, err
	}
	if cfg.Paths.ArtifactExt != "" && !strings.HasPrefix(cfg.Paths.ArtifactExt, ".") {
		cfg.Paths.ArtifactExt = "." + cfg.Paths.ArtifactExt
	}
	switch cfg.Subscribers.Backend {
	case "http", "postgres":
	default:
		return AppConfig{}, fmt.Errorf("SUBSCRIBER_BACKEND: неизвестный backend %q", cfg.Subscribers.Backend)
	}
	if _, err := cfg.htmlURLPrefix(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Location возвращает часовой пояс для даты публикации, UTC при ошибке.
func (c AppConfig) Location() *time.Location {
	if c.TZ == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.TZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Resolve превращает путь из конфига в путь относительно корня сайта.
func (c AppConfig) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.Root, p)
}

// HTMLURLPrefix путь каталога страниц относительно корня сайта, в стиле URL.
// Пустая строка, если страницы лежат в самом корне.
func (c AppConfig) HTMLURLPrefix() string {
	prefix, _ := c.htmlURLPrefix()
	return prefix
}

func (c AppConfig) htmlURLPrefix() (string, error) {
	root := c.Paths.Root
	if root == "" {
		root = "."
	}
	dir := c.Resolve(c.Paths.HTMLDir)
	if filepath.IsAbs(root) != filepath.IsAbs(dir) {
		var err error
		if root, err = filepath.Abs(root); err != nil {
			return "", err
		}
		if dir, err = filepath.Abs(dir); err != nil {
			return "", err
		}
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("HTML_DIR %q вне SITE_ROOT %q", c.Paths.HTMLDir, c.Paths.Root)
	}
	if rel == "." {
		return "", nil
	}
	return rel, nil
}

// SiteBaseURL возвращает SITE_BASE с завершающим слэшем или пустую строку.
func (c AppConfig) SiteBaseURL() string {
	base := strings.TrimSpace(c.SiteBase)
	if base == "" {
		return ""
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// AbsoluteURL дописывает SITE_BASE к относительному URL листинга.
func (c AppConfig) AbsoluteURL(rel string) string {
	return c.SiteBaseURL() + strings.TrimPrefix(rel, "/")
}

// UnsubscribeURL адрес страницы отписки: абсолютный UNSUBSCRIBE_PAGE как есть,
// относительный от SITE_BASE.
func (c AppConfig) UnsubscribeURL() string {
	page := strings.TrimSpace(c.Subscribers.UnsubscribePage)
	if strings.HasPrefix(page, "http://") || strings.HasPrefix(page, "https://") {
		return page
	}
	return c.AbsoluteURL(page)
}

// StoreProfile факты о магазине из окружения.
func (c AppConfig) StoreProfile() domain.StoreProfile {
	return domain.StoreProfile{
		Name:      c.Store.Name,
		Address:   c.Store.Address,
		Phone:     c.Store.Phone,
		PhoneLink: c.Store.PhoneLink,
		MapsURL:   c.Store.MapsURL,
	}
}
