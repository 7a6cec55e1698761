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

package queue

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/hibiken/asynq"

	"github.com/go-tenancy/tenancy/pkg/log"
	"github.com/go-tenancy/tenancy/pkg/mail"
)

// TypeInvitationEmail 组织邀请邮件任务类型
const TypeInvitationEmail = "email:org_invitation"

// InvitationEmailPayload 邀请邮件任务负载
type InvitationEmailPayload struct {
	InvitationId string `json:"invitationId"`
	Email        string `json:"email"`
	OrgName      string `json:"orgName"`
	InviterName  string `json:"inviterName"`
	Role         string `json:"role"`
	AcceptURL    string `json:"acceptUrl"`
}

// NewInvitationEmailTask 构造邀请邮件任务负载
func NewInvitationEmailTask(p *InvitationEmailPayload) ([]byte, error) {
	data, err := sonic.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal invitation email payload: %w", err)
	}
	return data, nil
}

// newInvitationEmailHandler 邀请邮件任务处理器
func newInvitationEmailHandler(sender mail.Sender) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p InvitationEmailPayload
		if err := sonic.Unmarshal(t.Payload(), &p); err != nil {
			// 负载损坏，重试无意义
			return fmt.Errorf("unmarshal invitation email payload: %v: %w", err, asynq.SkipRetry)
		}

		msg := &mail.Message{
			To:      p.Email,
			Subject: fmt.Sprintf("You've been invited to join %s", p.OrgName),
			Html: fmt.Sprintf(
				"<p>%s has invited you to join <strong>%s</strong> as %s.</p>"+
					`<p><a href="%s">Accept invitation</a></p>`,
				p.InviterName, p.OrgName, p.Role, p.AcceptURL,
			),
		}

		if err := sender.Send(ctx, msg); err != nil {
			return fmt.Errorf("send invitation email to %s: %w", p.Email, err)
		}

		log.Infow("invitation email sent", "invitationId", p.InvitationId, "email", p.Email)

		return nil
	}
}
