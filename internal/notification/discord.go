package notification

import (
	"fmt"
	"time"

	"scanwarden/internal/models"

	"github.com/bwmarrin/discordgo"
)

type Message struct {
	Title       string
	Description string
	Risk        string
	Fields      map[string]string
	Timestamp   time.Time
}

type Client struct {
	sg        *discordgo.Session
	channelID string
}

func NewClient(token, channelID string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("discord token not configured")
	}
	if channelID == "" {
		return nil, fmt.Errorf("discord channel id not configured")
	}

	sg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	if err := sg.Open(); err != nil {
		return nil, err
	}

	return &Client{sg: sg, channelID: channelID}, nil
}

// Risk levels as the scanning daemon reports them.
func riskColor(risk string) int {
	switch risk {
	case "High":
		return 0xFF0000
	case "Medium":
		return 0xFF8C00
	case "Low":
		return 0xFFD700
	case "Informational":
		return 0x00BFFF
	default:
		return 0x808080
	}
}

func riskRank(risk string) int {
	switch risk {
	case "High":
		return 3
	case "Medium":
		return 2
	case "Low":
		return 1
	default:
		return 0
	}
}

func (c *Client) Send(msg Message) error {
	if c.sg == nil {
		return fmt.Errorf("discord client not initialized")
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	embed := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Description,
		Color:       riskColor(msg.Risk),
		Timestamp:   msg.Timestamp.Format(time.RFC3339),
	}

	if len(msg.Fields) > 0 {
		fields := make([]*discordgo.MessageEmbedField, 0, len(msg.Fields))
		for key, value := range msg.Fields {
			fields = append(fields, &discordgo.MessageEmbedField{
				Name:   key,
				Value:  value,
				Inline: true,
			})
		}
		embed.Fields = fields
	}

	_, err := c.sg.ChannelMessageSendEmbed(c.channelID, embed)
	return err
}

// NotifyFindings posts one embed summarizing the alerts a sweep collected
// for a target, colored by the highest risk present.
func (c *Client) NotifyFindings(target string, alerts []models.Alert) error {
	highest := ""
	counts := make(map[string]int)
	for _, alert := range alerts {
		risk, _ := alert["risk"].(string)
		if risk == "" {
			risk = "Unknown"
		}
		counts[risk]++
		if riskRank(risk) > riskRank(highest) {
			highest = risk
		}
	}

	fields := make(map[string]string, len(counts))
	for risk, count := range counts {
		fields[risk] = fmt.Sprintf("%d", count)
	}

	return c.Send(Message{
		Title:       "New scan findings",
		Description: fmt.Sprintf("%d alert(s) for %s", len(alerts), target),
		Risk:        highest,
		Fields:      fields,
	})
}

func (c *Client) Close() error {
	if c.sg != nil {
		return c.sg.Close()
	}
	return nil
}
