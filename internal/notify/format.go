package notify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"
)

// Префиксы callback data инлайн-кнопок админа.
const (
	CallbackApprovePrefix = "order:approve:"
	CallbackRejectPrefix  = "order:reject:"
	CallbackShipPrefix    = "order:ship:"
	CallbackInvoicePrefix = "order:invoice:"
)

// EscapeHTML экранирует спецсимволы HTML-разметки сообщений.
func EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// UserReference строит кликабельную ссылку на пользователя.
func UserReference(userID int64, username string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<a href="tg://user?id=%d">%d</a>`, userID, userID)
	if username != "" {
		sb.WriteString(" (@")
		sb.WriteString(EscapeHTML(username))
		sb.WriteString(")")
	}
	return sb.String()
}

// TopicLink — ссылка на тему форума: служебный префикс "100" супергруппы отбрасывается.
func TopicLink(chatID int64, threadID int) string {
	abs := strconv.FormatInt(chatID, 10)
	abs = strings.TrimPrefix(abs, "-")
	chatPart := strings.TrimPrefix(abs, "100")
	return fmt.Sprintf("https://t.me/c/%s/%d", chatPart, threadID)
}

func StatusIcon(status models.OrderStatus) string {
	switch status {
	case models.OrderStatusApproved:
		return "✅"
	case models.OrderStatusShipped:
		return "📦"
	case models.OrderStatusRejected:
		return "❌"
	default:
		return "🆕"
	}
}

// OrderTopicName — имя темы заказа: иконка статуса + короткий id + имя покупателя.
func OrderTopicName(order *models.Order) string {
	shortID := order.ID.String()[:8]
	return StatusIcon(order.Status) + " Заказ " + shortID + " — " + order.CustomerName
}

// ItemsBlock рендерит состав заказа с итогом, скидкой и промокодом.
func ItemsBlock(order *models.Order) string {
	var sb strings.Builder
	sb.WriteString("\n<b>🧾 Состав:</b>\n")
	for _, it := range order.Items {
		lineTotal := it.PriceMinorSnapshot * int64(it.Quantity)
		sb.WriteString("• ")
		sb.WriteString(EscapeHTML(it.TitleSnapshot))
		if it.VariantNameSnapshot != nil && *it.VariantNameSnapshot != "" {
			sb.WriteString(" (")
			sb.WriteString(EscapeHTML(*it.VariantNameSnapshot))
			sb.WriteString(")")
		}
		fmt.Fprintf(&sb, " × %d — %d %s\n", it.Quantity, lineTotal, EscapeHTML(order.Currency))
	}
	fmt.Fprintf(&sb, "\n<b>💰 Итого:</b> %d %s\n", order.TotalMinor, EscapeHTML(order.Currency))
	if order.DiscountMinor > 0 {
		fmt.Fprintf(&sb, "Скидка: -%d %s\n", order.DiscountMinor, EscapeHTML(order.Currency))
	}
	if order.PromoCode != nil && *order.PromoCode != "" {
		sb.WriteString("Промокод: ")
		sb.WriteString(EscapeHTML(*order.PromoCode))
		sb.WriteString("\n")
	}
	return sb.String()
}

func customerBlock(order *models.Order) string {
	var sb strings.Builder
	sb.WriteString("👤 ")
	sb.WriteString(EscapeHTML(order.CustomerName))
	sb.WriteString("\n📞 ")
	sb.WriteString(EscapeHTML(order.Phone))
	sb.WriteString("\n📦 ")
	sb.WriteString(EscapeHTML(order.Address))
	sb.WriteString("\n")
	if order.Comment != "" {
		sb.WriteString("💬 ")
		sb.WriteString(EscapeHTML(order.Comment))
		sb.WriteString("\n")
	}
	return sb.String()
}

// AdminOrderText — сообщение админу о новом заказе.
func AdminOrderText(order *models.Order) string {
	var sb strings.Builder
	sb.WriteString("<b>🛒 Новый заказ</b>\n")
	fmt.Fprintf(&sb, "ID: <code>%s</code>\n\n", EscapeHTML(order.ID.String()))
	sb.WriteString(customerBlock(order))
	sb.WriteString(ItemsBlock(order))
	sb.WriteString("\n👤 TG: ")
	sb.WriteString(UserReference(order.TgUserID, order.TgUsername))
	sb.WriteString("\n")
	return sb.String()
}

// AdminDecisionText — карточка заказа после решения (редактирование исходного сообщения).
func AdminDecisionText(order *models.Order, statusOverride, rejectReason string) string {
	status := statusOverride
	if status == "" {
		switch order.Status {
		case models.OrderStatusApproved:
			status = "✅ <b>ОДОБРЕНО</b>"
		case models.OrderStatusShipped:
			status = "📦 <b>ВЫСЛАНО</b>"
		case models.OrderStatusRejected:
			status = "❌ <b>ОТКЛОНЕНО</b>"
		}
	}

	var sb strings.Builder
	sb.WriteString(status)
	sb.WriteString("\n\n<b>🛒 Заказ</b>\n")
	fmt.Fprintf(&sb, "ID: <code>%s</code>\n\n", EscapeHTML(order.ID.String()))
	sb.WriteString(customerBlock(order))
	sb.WriteString(ItemsBlock(order))
	if order.TrackingNumber != nil && *order.TrackingNumber != "" {
		fmt.Fprintf(&sb, "\n📦 ТТН: %s\n", EscapeHTML(*order.TrackingNumber))
	}
	if rejectReason != "" {
		fmt.Fprintf(&sb, "\n❌ Причина: %s\n", EscapeHTML(rejectReason))
	}
	sb.WriteString("\n👤 TG: ")
	sb.WriteString(UserReference(order.TgUserID, order.TgUsername))
	sb.WriteString("\n")
	return sb.String()
}

// UserPlacedText — подтверждение покупателю после оформления.
func UserPlacedText(order *models.Order) string {
	var sb strings.Builder
	sb.WriteString("✅ <b>Заказ принят</b>\n")
	fmt.Fprintf(&sb, "ID: <code>%s</code>\n", EscapeHTML(order.ID.String()))
	fmt.Fprintf(&sb, "💰 Итого: %d %s\n\n", order.TotalMinor, EscapeHTML(order.Currency))
	sb.WriteString("Мы свяжемся с вами после проверки заказа администратором.")
	return sb.String()
}

func UserApprovedText(order *models.Order) string {
	var sb strings.Builder
	sb.WriteString("✅ <b>Ваш заказ одобрен</b>\n")
	fmt.Fprintf(&sb, "ID: <code>%s</code>\n", EscapeHTML(order.ID.String()))
	sb.WriteString(ItemsBlock(order))
	sb.WriteString("\nСпасибо! Мы скоро свяжемся с вами.")
	return sb.String()
}

func UserRejectedText(order *models.Order, reason string) string {
	var sb strings.Builder
	sb.WriteString("❌ <b>Ваш заказ отклонён</b>\n")
	fmt.Fprintf(&sb, "ID: <code>%s</code>\n", EscapeHTML(order.ID.String()))
	if reason != "" {
		fmt.Fprintf(&sb, "Причина: %s\n", EscapeHTML(reason))
	}
	sb.WriteString("Если хотите — оформите заказ повторно или уточните детали у администратора.")
	return sb.String()
}

func UserShippedText(order *models.Order) string {
	var sb strings.Builder
	sb.WriteString("📦 <b>Ваш заказ отправлен</b>\n")
	fmt.Fprintf(&sb, "ID: <code>%s</code>\n", EscapeHTML(order.ID.String()))
	if order.TrackingNumber != nil && *order.TrackingNumber != "" {
		fmt.Fprintf(&sb, "ТТН: %s\n", EscapeHTML(*order.TrackingNumber))
	}
	sb.WriteString(ItemsBlock(order))
	sb.WriteString("\nСпасибо за заказ!")
	return sb.String()
}
