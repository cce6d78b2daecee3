package flow

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Ananth-NQI/orderbot/internal/catalog"
	"github.com/Ananth-NQI/orderbot/internal/delivery"
)

const contactExample = "Ejemplo:\nJuan Pérez, 3001234567"

// FormatMoney renders whole pesos with Spanish digit grouping ("$16.000").
func FormatMoney(v int64) string {
	return message.NewPrinter(language.Spanish).Sprintf("$%d", v)
}

func welcomeMessage(business string) string {
	return fmt.Sprintf("👋 ¡Hola! Bienvenido a *%s*.\n\n"+
		"✍️ Escríbeme tu *nombre y número de teléfono* separados por coma.\n%s",
		business, contactExample)
}

func contactFormatError() string {
	return "❌ Formato incorrecto.\nEscribe:\nNombre, Teléfono\n" + contactExample
}

func contactPrompt() string {
	return "✍️ Escribe tu *nombre y número de teléfono* separados por coma.\n" + contactExample
}

func productMenu(cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("🫓 *Presentación de productos*\n\n")
	for _, p := range cat.Products() {
		fmt.Fprintf(&b, "• %s → %s (%s)\n", p.Name, p.Pack, FormatMoney(p.UnitPrice))
	}
	b.WriteString("\n¿Qué deseas pedir?\n\n")
	for _, p := range cat.Products() {
		fmt.Fprintf(&b, "%s. %s\n", p.ID, p.Name)
	}
	b.WriteString("\n✍️ Puedes escribir por ejemplo: 1,2")
	return b.String()
}

func productError(cat *catalog.Catalog) string {
	products := cat.Products()
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return fmt.Sprintf("❌ Opción no válida. Usa %s separados por coma.", strings.Join(ids, ", "))
}

func quantityPrompt(p catalog.Product) string {
	return fmt.Sprintf("¿Cuántos *paquetes* de *%s* deseas pedir?", p.Name)
}

func quantityError(p catalog.Product) string {
	return "❌ Cantidad no válida. Escribe un número mayor que cero.\n\n" + quantityPrompt(p)
}

func dateMenu(opts []delivery.Option) string {
	var b strings.Builder
	b.WriteString("📅 ¿Para qué fecha deseas la entrega?\n\n")
	for i, o := range opts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, o.Label)
	}
	b.WriteString("\n✍️ Responde con el número de la opción.")
	return b.String()
}

func dateError(n int) string {
	return fmt.Sprintf("❌ Fecha no válida. Responde con un número del 1 al %d.", n)
}

// orderDetails renders contact, date, lines and total; the total is
// recomputed from the lines every time.
func orderDetails(s *Session, cat *catalog.Catalog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👤 Nombre: %s\n📞 Teléfono: %s\n", s.Contact.Name, s.Contact.Phone)
	fmt.Fprintf(&b, "📅 Fecha: %s (%s)\n\n🫓 Pedido:\n", s.SelectedDate.Label, s.SelectedDate.ISO)
	for _, l := range s.Lines {
		p, _ := cat.Lookup(l.ProductID)
		fmt.Fprintf(&b, "• %s: %d paquetes × %s = %s\n",
			p.Name, l.Quantity, FormatMoney(p.UnitPrice), FormatMoney(l.Subtotal))
	}
	fmt.Fprintf(&b, "\n💰 Total: %s", FormatMoney(Total(s.Lines)))
	return b.String()
}

func summaryMessage(s *Session, cat *catalog.Catalog) string {
	return "🧾 *Resumen de tu pedido*\n\n" + orderDetails(s, cat) +
		"\n\nResponde *SI* para confirmar, *MODIFICAR* para cambiar algo o *CANCELAR* para cancelar."
}

func summaryHint() string {
	return "🤔 No entendí tu respuesta. Responde *SI* para confirmar, *MODIFICAR* o *CANCELAR*."
}

func modifyMenu() string {
	return "✏️ ¿Qué deseas modificar?\n\n" +
		"1. Productos y cantidades\n" +
		"2. Fecha de entrega\n" +
		"3. Nombre y teléfono\n" +
		"4. Cancelar pedido"
}

func modifyError() string {
	return "❌ Opción no válida. Responde 1, 2, 3 o 4."
}

func cancelledMessage() string {
	return "🛑 Tu pedido fue cancelado. Escribe *hola* cuando quieras empezar de nuevo."
}

func confirmedMessage(s *Session, cat *catalog.Catalog) string {
	return fmt.Sprintf("✅ *Pedido confirmado*\n\n🔖 Referencia: %s\n%s\n\n🙏 Gracias por tu pedido",
		s.OrderRef, orderDetails(s, cat))
}

func submitFailedMessage() string {
	return "⚠️ No pudimos registrar tu pedido en este momento. Tu pedido sigue guardado: responde *SI* para reintentar."
}

// SessionExpiredMessage is sent when a session is dropped for inactivity.
func SessionExpiredMessage() string {
	return "⌛ Tu sesión expiró por inactividad. Escribe *hola* para empezar un nuevo pedido."
}
