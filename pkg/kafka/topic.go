package kafka

// TopicPrefix namespaces every topic this service writes.
const TopicPrefix = "storefront"

// Topic builds "<prefix>.<domain>.<action>", e.g. storefront.cart.updated.
func Topic(domain, action string) string {
	return TopicPrefix + "." + domain + "." + action
}
