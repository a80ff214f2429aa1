package notifier

import (
	"fmt"
	"strings"
)

const priceAlertUpperTemplate = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#141414;font-family:Arial,Helvetica,sans-serif;">
  <div style="max-width:600px;margin:0 auto;padding:24px;color:#e8e8e8;">
    <h2 style="color:#0fedbe;margin-bottom:4px;">Price Alert: {{symbol}} hit your upper target</h2>
    <p style="color:#9ca3af;margin-top:0;">{{company}}</p>
    <p>Hi {{name}},</p>
    <p><strong>{{symbol}}</strong> has reached above your target price.</p>
    <table style="width:100%;border-collapse:collapse;margin:16px 0;">
      <tr>
        <td style="padding:8px 0;color:#9ca3af;">Current price</td>
        <td style="padding:8px 0;text-align:right;color:#0fedbe;font-size:18px;"><strong>{{currentPrice}}</strong></td>
      </tr>
      <tr>
        <td style="padding:8px 0;color:#9ca3af;">Your target</td>
        <td style="padding:8px 0;text-align:right;">{{targetPrice}}</td>
      </tr>
    </table>
    <p style="color:#9ca3af;font-size:12px;">{{timestamp}} ET &middot; This alert has now been deactivated.</p>
  </div>
</body>
</html>`

const priceAlertLowerTemplate = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#141414;font-family:Arial,Helvetica,sans-serif;">
  <div style="max-width:600px;margin:0 auto;padding:24px;color:#e8e8e8;">
    <h2 style="color:#fe664e;margin-bottom:4px;">Price Alert: {{symbol}} dropped below your target</h2>
    <p style="color:#9ca3af;margin-top:0;">{{company}}</p>
    <p>Hi {{name}},</p>
    <p><strong>{{symbol}}</strong> has dropped below your target price.</p>
    <table style="width:100%;border-collapse:collapse;margin:16px 0;">
      <tr>
        <td style="padding:8px 0;color:#9ca3af;">Current price</td>
        <td style="padding:8px 0;text-align:right;color:#fe664e;font-size:18px;"><strong>{{currentPrice}}</strong></td>
      </tr>
      <tr>
        <td style="padding:8px 0;color:#9ca3af;">Your target</td>
        <td style="padding:8px 0;text-align:right;">{{targetPrice}}</td>
      </tr>
    </table>
    <p style="color:#9ca3af;font-size:12px;">{{timestamp}} ET &middot; This alert has now been deactivated.</p>
  </div>
</body>
</html>`

// FormatPrice renders a price the way the emails show it.
func FormatPrice(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}

// Subject builds the email subject line for a price alert.
func Subject(a PriceAlert) string {
	side := "Above"
	if a.Direction == DirectionLower {
		side = "Below"
	}
	return fmt.Sprintf("Price Alert: %s %s %s", a.Symbol, side, FormatPrice(a.TargetPrice))
}

// RenderPriceAlert fills the direction's HTML template.
func RenderPriceAlert(a PriceAlert) string {
	tmpl := priceAlertUpperTemplate
	if a.Direction == DirectionLower {
		tmpl = priceAlertLowerTemplate
	}
	r := strings.NewReplacer(
		"{{symbol}}", a.Symbol,
		"{{company}}", a.Company,
		"{{name}}", a.Name,
		"{{currentPrice}}", FormatPrice(a.CurrentPrice),
		"{{targetPrice}}", FormatPrice(a.TargetPrice),
		"{{timestamp}}", a.Timestamp.Format("Jan 2, 2006 3:04 PM"),
	)
	return r.Replace(tmpl)
}
