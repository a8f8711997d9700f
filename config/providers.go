package config

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"rescueradar/services"
	"rescueradar/utils"
)

// UploadURLPrefix is where locally stored images are served from
const UploadURLPrefix = "/uploads"

// InitAIService returns a disabled analyzer when GROQ_API_KEY is missing
func (c *Config) InitAIService() *services.AIService {
	apiKey := c.GroqAPIKey
	if utils.IsPlaceholder(apiKey) {
		logrus.Warn("GROQ_API_KEY not configured, AI analysis disabled")
		apiKey = ""
	}
	return services.NewAIService(apiKey, c.GroqBaseURL, c.GroqModel)
}

func (c *Config) InitWhatsAppService() *services.WhatsAppService {
	if utils.IsPlaceholder(c.TwilioAccountSID) || utils.IsPlaceholder(c.TwilioAuthToken) {
		logrus.Warn("Twilio credentials not configured, WhatsApp notifications disabled")
		return services.NewWhatsAppService("", "", c.TwilioWhatsAppNumber)
	}
	return services.NewWhatsAppService(c.TwilioAccountSID, c.TwilioAuthToken, c.TwilioWhatsAppNumber)
}

func (c *Config) InitPlaceService(cache *services.Cache) *services.PlaceService {
	places, err := services.NewPlaceService(c.GoogleMapsAPIKey, cache)
	if err != nil {
		logrus.Errorf("Failed to initialize Google Maps client: %v", err)
		places, _ = services.NewPlaceService("", cache)
	}
	if !places.Enabled() {
		logrus.Warn("GOOGLE_MAPS_API_KEY not configured, organization lookup disabled")
	}
	return places
}

// InitImageStorage uses MinIO when MINIO_ENDPOINT is set and local disk otherwise
func (c *Config) InitImageStorage() services.ImageStorage {
	if c.MinIOEndpoint != "" {
		storage, err := services.NewMinIOStorage(
			c.MinIOEndpoint,
			c.MinIOPublicEndpoint,
			c.MinIOAccessKey,
			c.MinIOSecretKey,
			c.MinIOBucket,
			c.MinIOUseSSL,
		)
		if err == nil {
			logrus.Infof("🗄️  Image storage: MinIO bucket %s", c.MinIOBucket)
			return storage
		}
		logrus.Errorf("Failed to initialize MinIO, falling back to local storage: %v", err)
	}

	logrus.Infof("🗄️  Image storage: local directory %s", c.UploadDir)
	return services.NewLocalStorage(c.UploadDir, strings.TrimRight(c.BaseURL, "/")+UploadURLPrefix)
}

// InitEventPublisher returns a no-op publisher when AMQP is not configured or unreachable
func (c *Config) InitEventPublisher() services.EventPublisher {
	if c.AMQPURL == "" {
		logrus.Info("AMQP_URL not set, report events will not be published")
		return services.NoopPublisher{}
	}

	publisher, err := services.NewRabbitMQPublisher(c.AMQPURL, c.AMQPExchange)
	if err != nil {
		logrus.Errorf("Failed to connect to RabbitMQ, report events disabled: %v", err)
		return services.NoopPublisher{}
	}
	logrus.Infof("📨 Publishing report events to exchange %s", c.AMQPExchange)
	return publisher
}

// HealthChecks lists the configuration checks reported by /api/health
func (c *Config) HealthChecks(storage services.ImageStorage) []services.ServiceCheck {
	upload := services.ServiceCheck{Name: "file_upload", Values: []string{c.UploadDir}}
	if c.MinIOEndpoint != "" {
		upload.Values = []string{c.MinIOEndpoint, c.MinIOAccessKey, c.MinIOSecretKey}
	}
	if storage != nil {
		upload.Probe = func(ctx context.Context) error {
			return storage.HealthCheck(ctx)
		}
	}

	return []services.ServiceCheck{
		{Name: "ai_analysis", Values: []string{c.GroqAPIKey}},
		{Name: "email_notification", Values: []string{c.EmailAPIKey()}},
		{Name: "whatsapp", Values: []string{c.TwilioAccountSID, c.TwilioAuthToken}},
		{Name: "google_maps", Values: []string{c.GoogleMapsAPIKey}},
		{Name: "database", Values: []string{c.StoreURL()}},
		upload,
	}
}
