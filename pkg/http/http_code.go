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

package http

var (
	Failed                        = failed(500, "Request failed")
	RequestParameterParsingFailed = failed(5001, "Request parameter parsing failed")
	OrgIdIsEmpty                  = failed(5002, "Org id is empty")

	// Unauthorized 401
	Unauthorized         = failed(4401, "Unauthorized")
	AuthenticationFailed = failed(4402, "Authentication failed")
	AuthorizationEmpty   = failed(4404, "Authorization is empty")
	InvalidToken         = failed(4405, "Invalid token")
	TokenBeEmpty         = failed(4406, "Token cannot be empty")
	TokenExpired         = failed(4407, "Token is expired")

	// BadRequest 400
	BadRequest = failed(4000, "Bad request")
	NotFound   = failed(4004, "Not found")

	// Forbidden 403
	Forbidden        = failed(4030, "Forbidden")
	PermissionDenied = failed(4031, "Permission denied")

	InternalError = failed(5000, "Internal error, please contact the administrator")

	UserNotExist             = failed(4041, "User does not exist")
	UserAlreadyExist         = failed(4042, "User already exists")
	UserIncorrectPassword    = failed(4043, "User incorrect password")
	EmailAndPasswordRequired = failed(4045, "Email and password are required")
	OrgNotExist              = failed(4046, "Organization does not exist")
	OrgSlugAlreadyExist      = failed(4047, "Organization slug already exists")
	InvitationNotExist       = failed(4048, "Invitation does not exist")
	InvitationNoLongerValid  = failed(4049, "Invitation is no longer valid")
	UnknownRole              = failed(4050, "Unknown role")
	LastOwnerCannotBeRemoved = failed(4051, "The last owner of an organization cannot be removed")
	DeviceCodeNotExist       = failed(4052, "Device code does not exist")
	DeviceCodeNoLongerValid  = failed(4053, "Device code is no longer valid")
	OrganizationCreateFailed = failed(5003, "Failed to create organization")
)

var (
	Success = success(200, "Request Success")
)

// failed 构造函数
func failed(code int, msg string) *Response {
	return &Response{
		Code:   code,
		Msg:    msg,
		Detail: nil,
	}
}

// success 构造函数
func success(code int, msg string) *Response {
	return &Response{
		Code:   code,
		Msg:    msg,
		Detail: nil,
	}
}
