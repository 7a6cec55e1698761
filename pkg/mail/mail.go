// Copyright 2025 Tenancy Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Conf holds the transactional mail API configuration. The API is a
// Resend-style JSON endpoint; actual delivery stays on the provider side.
type Conf struct {
	Endpoint      string `mapstructure:"endpoint"`
	APIKey        string `mapstructure:"apiKey"`
	SenderName    string `mapstructure:"senderName"`
	SenderAddress string `mapstructure:"senderAddress"`
	Timeout       int    `mapstructure:"timeout"` // seconds
}

// Sender delivers a single mail message.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
	From    string `json:"from"`
}

type Client struct {
	conf   Conf
	client *resty.Client
}

func NewClient(conf Conf) *Client {
	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = 10
	}
	return &Client{
		conf: conf,
		client: resty.New().
			SetBaseURL(conf.Endpoint).
			SetTimeout(time.Duration(timeout) * time.Second).
			SetAuthToken(conf.APIKey),
	}
}

func (c *Client) Send(ctx context.Context, msg *Message) error {
	if msg.From == "" {
		msg.From = fmt.Sprintf("%s <%s>", c.conf.SenderName, c.conf.SenderAddress)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(msg).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	if resp.IsError() {
		return fmt.Errorf("send mail to %s: api status %d", msg.To, resp.StatusCode())
	}
	return nil
}
