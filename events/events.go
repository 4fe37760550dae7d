package events

import (
	"github.com/leandro-lugaresi/hub"
)

type Hub = hub.Hub
type Data = hub.Fields
type Message = hub.Message

// Topics published by the album cache and the photo loader. Handlers
// subscribe to "album.*" / "photo.*" to surface notifications.
const (
	TopicAlbumPopulated  = "album.populated"
	TopicAlbumRefreshed  = "album.refreshed"
	TopicAlbumNoResults  = "album.no_results"
	TopicPhotoLoaded     = "photo.loaded"
	TopicPhotoLoadFailed = "photo.load_failed"
)

const channelCap = 100

func NewHub() *Hub {
	return hub.New()
}

func Publish(h *Hub, topic string, data Data) {
	h.Publish(Message{
		Name:   topic,
		Fields: data,
	})
}

func Subscribe(h *Hub, topics ...string) hub.Subscription {
	return h.NonBlockingSubscribe(channelCap, topics...)
}

func Unsubscribe(h *Hub, s hub.Subscription) {
	h.Unsubscribe(s)
}
