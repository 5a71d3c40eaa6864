package utils

import (
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/shift-board/internal/calendar"
	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	name := ""
	for range rand.Intn(2) + 1 {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

const digits = "0123456789"

// GenerateUsernameFromChineseName 取每个字拼音的前缀，再加上 1~3 位数字
func GenerateUsernameFromChineseName(chineseName string) string {
	username := ""
	for _, p := range pinyin.LazyConvert(chineseName, nil) {
		username += p[:rand.Intn(len(p))+1]
	}

	for range rand.Intn(3) + 1 {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

// GenerateRandomUser 生成的都是普通员工
func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         domain.RoleStaff,
	}, nil
}

type ShiftSlot struct {
	StartTime string
	EndTime   string
}

// ShiftSlots 是前台常用的几个时段
var ShiftSlots = []ShiftSlot{
	{StartTime: "09:00", EndTime: "10:00"},
	{StartTime: "10:00", EndTime: "12:00"},
	{StartTime: "13:30", EndTime: "16:10"},
	{StartTime: "16:10", EndTime: "18:00"},
	{StartTime: "19:00", EndTime: "21:00"},
}

var shiftNames = []string{"Front Desk", "Help Desk", "Server Room", "Network Patrol", "Hotline"}

// GenerateRandomShift 在 day 所在的周内随机生成一个班次
func GenerateRandomShift(day time.Time) *domain.Shift {
	week, year := calendar.CalculateWeekAndYear(day)
	monday, _ := calendar.WeekStart(week, year)
	slot := ShiftSlots[rand.Intn(len(ShiftSlots))]

	return &domain.Shift{
		Name:      shiftNames[rand.Intn(len(shiftNames))],
		Date:      monday.AddDate(0, 0, rand.Intn(7)).Format(calendar.DateLayout),
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
	}
}
