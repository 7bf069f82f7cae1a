package di

import (
	"context"
	"log"
	"time"

	"github.com/google/wire"
	"gorm.io/gorm"

	"taskchat/internal/chat/attachment"
	"taskchat/internal/chat/handler"
	"taskchat/internal/chat/presence"
	"taskchat/internal/chat/realtime"
	"taskchat/internal/chat/repository"
	"taskchat/internal/chat/service"
	"taskchat/internal/common"
	"taskchat/internal/config"
	"taskchat/internal/dbmongo"
	"taskchat/internal/dbmysql"
	"taskchat/internal/notif"
	"taskchat/internal/user"
)

// Application is everything cmd/chat-svc needs to serve.
type Application struct {
	Config        *config.Config
	DB            *gorm.DB
	Tokens        *common.TokenManager
	Users         user.UserRepository
	Hub           *realtime.Hub
	Relay         *realtime.RedisRelay
	Chat          *handler.ChatHandler
	Notifications *notif.NotificationHandler
	Notifier      *notif.NotificationService
}

var storeSet = wire.NewSet(
	ProvideDatabase,
	ProvideAttachmentStorage,
	user.NewUserRepository,
	repository.NewChatRepository,
	dbmysql.NewNotificationRepository,
)

var chatSet = wire.NewSet(
	common.NewTokenManager,
	presence.NewRegistry,
	ProvideRedisRelay,
	ProvideServiceRelay,
	ProvideHubPublisher,
	ProvideUserDirectory,
	ProvideActivityRecorder,
	ProvideNotifier,
	ProvideAttachmentGateway,
	service.NewChatService,
	ProvideHub,
	ProvideChatHandler,
	notif.NewNotificationService,
	ProvideNotificationHandler,
)

func ProvideDatabase(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := dbmysql.NewMySQL(cfg)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { dbmysql.Close(db) }, nil
}

// ProvideAttachmentStorage picks the disk or GridFS backend.
func ProvideAttachmentStorage(cfg *config.Config) (attachment.Storage, func(), error) {
	if cfg.Attachment.Backend == "gridfs" {
		mc, err := dbmongo.NewMongoConnection(cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Println("Attachments stored in GridFS")
		return dbmongo.NewGridFSStorage(mc), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mc.Close(ctx); err != nil {
				log.Printf("Failed to close MongoDB connection: %v", err)
			}
		}, nil
	}

	disk, err := attachment.NewDiskStorage(cfg.Attachment.UploadDir)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Attachments stored under %s", cfg.Attachment.UploadDir)
	return disk, func() {}, nil
}

// ProvideRedisRelay returns nil when Redis is disabled.
func ProvideRedisRelay(cfg *config.Config) (*realtime.RedisRelay, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	rdb, err := realtime.NewRedisClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	relay := realtime.NewRedisRelay(rdb)
	return relay, func() {
		if err := relay.Close(); err != nil {
			log.Printf("Failed to close redis: %v", err)
		}
	}, nil
}

// The two relay providers keep a disabled relay a nil interface rather than
// an interface holding a nil pointer.

func ProvideServiceRelay(r *realtime.RedisRelay) service.Relay {
	if r == nil {
		return nil
	}
	return r
}

func ProvideHubPublisher(r *realtime.RedisRelay) realtime.Publisher {
	if r == nil {
		return nil
	}
	return r
}

func ProvideUserDirectory(users user.UserRepository) service.UserDirectory {
	return users
}

func ProvideActivityRecorder(users user.UserRepository) common.ActivityRecorder {
	return users
}

func ProvideNotifier(svc *notif.NotificationService) service.Notifier {
	return svc
}

func ProvideAttachmentGateway(
	storage attachment.Storage,
	repo repository.ChatRepository,
	tokens *common.TokenManager,
	cfg *config.Config,
) *attachment.Gateway {
	return attachment.NewGateway(storage, repo, tokens, cfg)
}

func ProvideHub(
	registry presence.Registry,
	tokens *common.TokenManager,
	activity common.ActivityRecorder,
	relay realtime.Publisher,
	cfg *config.Config,
) *realtime.Hub {
	return realtime.NewHub(registry, tokens, activity, relay, cfg)
}

func ProvideChatHandler(chatService service.ChatService, gateway *attachment.Gateway) *handler.ChatHandler {
	return handler.NewChatHandler(chatService, gateway)
}

func ProvideNotificationHandler(svc *notif.NotificationService) *notif.NotificationHandler {
	return notif.NewNotificationHandler(svc)
}
