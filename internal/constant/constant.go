package constant

const (
	DevelopmentEnvironment = "development"
	ProductionEnvironment  = "production"
)

const (
	OrderQueueName  = "order_queue"
	OrderQueueGroup = "order_group"

	OrderStreamName              = "orders"
	OrderStreamSubjectAll        = "orders.*"
	OrderStreamSubjectPlaceOrder = "orders.place_order"
)
