package common

type Observer interface {
	Update(event NotificationEvent) error
	Name() string
}

type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	Notify(event NotificationEvent)
	NotifyAsync(event NotificationEvent) error
}
