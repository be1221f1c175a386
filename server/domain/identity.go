package domain

type UserIdentity struct {
	ID          string
	DisplayName string
}

func NewUserIdentity(id, displayName string) UserIdentity {
	return UserIdentity{
		ID:          id,
		DisplayName: displayName,
	}
}

func (u UserIdentity) IsValid() bool {
	return u.ID != "" && u.DisplayName != ""
}

func (u UserIdentity) String() string {
	return u.DisplayName + "(" + u.ID + ")"
}
